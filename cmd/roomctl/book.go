package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/navikt/roomboard/internal/models"
)

func roomsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List configured rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			rooms, err := opts.client().ListRooms(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.outputJSON {
				return writeJSON(out, rooms)
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ROOM\tNAME\tCAPACITY\tHOURS\tSAT\tSUN")
			for _, room := range rooms {
				room = room.WithDefaults()
				fmt.Fprintf(w, "%s\t%s\t%d\t%s-%s\t%t\t%t\n",
					room.ID, room.Name, room.Capacity, room.OperatingStart, room.OperatingEnd, room.WorksSaturday, room.WorksSunday)
			}
			return w.Flush()
		},
	}
}

func bookCmd(opts *rootOptions) *cobra.Command {
	var appointment models.Appointment

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a 30 minute slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appointment.RoomID == "" || appointment.Date == "" || appointment.Time == "" {
				return fmt.Errorf("--room, --date and --time are required")
			}

			booked, err := opts.client().BookAppointment(cmd.Context(), appointment)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.outputJSON {
				return writeJSON(out, booked)
			}
			fmt.Fprintf(out, "Booked %s %s in %s (id %s)\n", booked.Date, booked.Time, booked.RoomID, booked.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&appointment.RoomID, "room", "", "Room ID")
	cmd.Flags().StringVar(&appointment.Date, "date", "", "Date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&appointment.Time, "time", "", "Slot start (HH:MM, on the half hour)")
	cmd.Flags().StringVar(&appointment.Subject, "subject", "", "Subject")
	cmd.Flags().StringVar(&appointment.UserName, "user", "", "Booked by")
	cmd.Flags().StringSliceVar(&appointment.Participants, "participant", nil, "Participant (repeatable)")
	return cmd
}

func cancelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <appointment-id>",
		Short: "Cancel a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().CancelAppointment(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s\n", args[0])
			return nil
		},
	}
}
