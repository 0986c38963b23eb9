// Command roomctl prints room status and day schedules from a roomboard server
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
