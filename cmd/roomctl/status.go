package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/navikt/roomboard/internal/models"
)

func statusCmd(opts *rootOptions) *cobra.Command {
	var roomID string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether rooms are occupied right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			out := cmd.OutOrStdout()

			if roomID == "" {
				statuses, err := c.AllStatuses(cmd.Context())
				if err != nil {
					return err
				}
				if opts.outputJSON {
					return writeJSON(out, statuses)
				}
				return renderStatuses(out, statuses)
			}

			status, err := c.RoomStatus(cmd.Context(), roomID)
			if err != nil {
				return err
			}
			if opts.outputJSON {
				return writeJSON(out, status)
			}
			if err := renderStatuses(out, []models.RoomStatus{status}); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return renderSlots(out, status.DaySchedule)
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "", "Room ID (all rooms when empty)")
	return cmd
}

func statusLabel(status models.RoomStatus) string {
	switch {
	case status.IsClosed:
		return "closed"
	case status.IsOccupied:
		return "occupied"
	default:
		return "available"
	}
}

func renderStatuses(out io.Writer, statuses []models.RoomStatus) error {
	if len(statuses) == 0 {
		fmt.Fprintln(out, "No rooms.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tNAME\tSTATUS\tCURRENT\tFREE SLOTS")
	for _, status := range statuses {
		current := "-"
		if status.CurrentAppointment != nil {
			current = appointmentLabel(status.CurrentAppointment)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", status.RoomID, status.RoomName, statusLabel(status), current, countFree(status.DaySchedule))
	}
	return w.Flush()
}

func appointmentLabel(a *models.Appointment) string {
	label := a.Time
	if a.Subject != "" {
		label += " " + a.Subject
	}
	if a.UserName != "" {
		label += " (" + a.UserName + ")"
	}
	return label
}

func countFree(slots []models.Slot) int {
	free := 0
	for _, slot := range slots {
		if slot.State == models.SlotFree {
			free++
		}
	}
	return free
}
