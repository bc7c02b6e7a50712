package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	sched "github.com/hrygo/agenda/server/service/schedule"
)

var startLayouts = []string{
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

func parseStart(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid start %q, use yyyy/MM/dd HH:mm", raw)
}

func newCalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Manage the occupied calendar",
	}
	cmd.AddCommand(newCalendarAddCmd(), newCalendarListCmd(), newCalendarFreeCmd())
	return cmd
}

func newCalendarAddCmd() *cobra.Command {
	var name, start string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Mark a meeting start as occupied",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			at, err := parseStart(start, p.Location())
			if err != nil {
				return err
			}

			ctx := context.Background()
			st, err := openStore(ctx, p)
			if err != nil {
				return err
			}
			defer st.Close()

			booking, err := sched.NewService(st, p.Location()).AddBooking(ctx, name, at)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s at %s\n", booking.UID, at.Format("2006/01/02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "meeting name")
	cmd.Flags().StringVar(&start, "start", "", "meeting start, yyyy/MM/dd HH:mm")
	_ = cmd.MarkFlagRequired("start")
	return cmd
}

func newCalendarListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List occupied meetings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			ctx := context.Background()
			st, err := openStore(ctx, p)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := sched.NewService(st, p.Location()).ListOccupied(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "UID\tSTART\tEND\tNAME")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.UID,
					r.Start.Format("2006/01/02 15:04"),
					r.Start.Add(p.MeetingDuration).Format("15:04"),
					r.Name)
			}
			return w.Flush()
		},
	}
}

func newCalendarFreeCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "free",
		Short: "List free slots of a day inside business hours",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile()
			if err != nil {
				return err
			}
			day, err := time.ParseInLocation("2006-01-02", date, p.Location())
			if err != nil {
				return fmt.Errorf("invalid date %q, use yyyy-MM-dd", date)
			}
			policy, err := sched.NewBusinessHoursPolicy(p.BusinessOpen, p.BusinessClose, p.BusinessDays)
			if err != nil {
				return err
			}

			ctx := context.Background()
			st, err := openStore(ctx, p)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := sched.NewService(st, p.Location()).ListOccupied(ctx)
			if err != nil {
				return err
			}
			calendar := sched.ToIntervals(records, p.MeetingDuration)
			for _, slot := range sched.FreeSlotsOn(calendar, day, policy, p.MeetingDuration) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s - %s\n", slot.Start.Format("15:04"), slot.End.Format("15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "day to inspect, yyyy-MM-dd")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}
