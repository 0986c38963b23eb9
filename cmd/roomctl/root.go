package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/navikt/roomboard/internal/client"
)

const defaultServerURL = "http://localhost:8080"

type rootOptions struct {
	server     string
	outputJSON bool
}

func (o *rootOptions) client() *client.Client {
	return client.NewClient(o.server)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:          "roomctl",
		Short:        "Room occupancy and slot availability from roomboard",
		SilenceUsage: true,
	}

	server := os.Getenv("ROOMBOARD_URL")
	if server == "" {
		server = defaultServerURL
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "roomboard base URL (env ROOMBOARD_URL)")
	rootCmd.PersistentFlags().BoolVar(&opts.outputJSON, "json", false, "Output JSON")

	rootCmd.AddCommand(statusCmd(opts))
	rootCmd.AddCommand(scheduleCmd(opts))
	rootCmd.AddCommand(roomsCmd(opts))
	rootCmd.AddCommand(bookCmd(opts))
	rootCmd.AddCommand(cancelCmd(opts))
	return rootCmd
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
