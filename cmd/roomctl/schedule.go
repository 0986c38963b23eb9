package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/navikt/roomboard/internal/models"
)

func scheduleCmd(opts *rootOptions) *cobra.Command {
	var roomID string
	var date string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Show a room's slots for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if roomID == "" {
				return fmt.Errorf("--room is required")
			}

			schedule, err := opts.client().Schedule(cmd.Context(), roomID, date)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.outputJSON {
				return writeJSON(out, schedule)
			}

			name := schedule.RoomName
			if name == "" {
				name = schedule.RoomID
			}
			fmt.Fprintf(out, "%s (%s)\nDate: %s\n\n", name, schedule.RoomID, schedule.Date)
			return renderSlots(out, schedule.Slots)
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "", "Room ID")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD, default today)")
	return cmd
}

func renderSlots(out io.Writer, slots []models.Slot) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATE\tAPPOINTMENT")
	for _, slot := range slots {
		appointment := ""
		if slot.Appointment != nil {
			appointment = appointmentLabel(slot.Appointment)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", slot.Time, slot.State, appointment)
	}
	return w.Flush()
}
