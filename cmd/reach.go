package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/scheduler"
)

// reach-* flags manage scheduler.Store's ReachSchedule entries: channel-
// targeted (not per-chat), daily/cron/one-shot fires (spec §3
// "ReachSchedule", §6). The separate `schedule` command
// (cmd/schedule.go) manages the distinct NotificationEntry store, which
// targets a specific paired chat id instead of a channel (spec §3
// "NotificationEntry").
var (
	reachAdd       bool
	reachList      bool
	reachRemoveID  string
	reachFire      bool
	reachTime      string
	reachCron      string
	reachInMinutes int
	reachOnceAt    string
	reachTimezone  string
	reachMessage   string
	reachChannel   string
)

func reachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reach",
		Short: "Manage and fire reach-at-time schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReach(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&reachAdd, "add", false, "add a schedule")
	cmd.Flags().BoolVar(&reachList, "list", false, "list all schedules")
	cmd.Flags().StringVar(&reachRemoveID, "remove", "", "remove the schedule with this id")
	cmd.Flags().BoolVar(&reachFire, "fire", false, "check and fire any due schedules now, then exit")
	cmd.Flags().StringVar(&reachTime, "time", "", "daily fire time, HH:MM")
	cmd.Flags().StringVar(&reachCron, "cron", "", "5-field cron expression")
	cmd.Flags().IntVar(&reachInMinutes, "in-minutes", 0, "fire once, N minutes from now")
	cmd.Flags().StringVar(&reachOnceAt, "once-at", "", "fire once at this RFC3339 timestamp")
	cmd.Flags().StringVar(&reachTimezone, "timezone", "", "IANA timezone for --time/--cron (default UTC)")
	cmd.Flags().StringVar(&reachMessage, "message", "", "message text to deliver")
	cmd.Flags().StringVar(&reachChannel, "channel", "telegram", "delivery channel name")
	return cmd
}

func runReach(ctx context.Context) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}
	store := env.Scheduler

	onceAt := reachOnceAt
	if reachInMinutes > 0 {
		onceAt = time.Now().Add(time.Duration(reachInMinutes) * time.Minute).UTC().Format(time.RFC3339)
	}

	switch {
	case reachAdd:
		sched, err := scheduler.NewSchedule(reachTime, reachCron, onceAt, reachMessage, reachChannel, reachTimezone)
		if err != nil {
			return err
		}
		if err := store.Add(sched); err != nil {
			return err
		}
		fmt.Printf("Added schedule %s\n", sched.ID)
		return nil

	case reachList:
		schedules, err := store.List()
		if err != nil {
			return err
		}
		if len(schedules) == 0 {
			fmt.Println("No schedules.")
			return nil
		}
		for _, s := range schedules {
			trigger := s.Time
			if s.Cron != "" {
				trigger = s.Cron
			} else if s.OnceAt != "" {
				trigger = s.OnceAt
			}
			fmt.Printf("%s  %-20s  %-10s  %s\n", s.ID, trigger, s.Channel, s.Message)
		}
		return nil

	case reachRemoveID != "":
		found, err := store.Remove(reachRemoveID)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("No schedule with id %s\n", reachRemoveID)
			os.Exit(1)
		}
		fmt.Printf("Removed schedule %s\n", reachRemoveID)
		return nil

	case reachFire:
		sched := scheduler.New(store, env.Notifications, telegramNotifier(env), env.Logger)
		fired, firedNotifications, err := sched.FireDue(ctx, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Fired %d schedule(s), %d notification(s).\n", len(fired), len(firedNotifications))
		return nil

	default:
		return fmt.Errorf("specify one of --add, --list, --remove, or --fire")
	}
}
