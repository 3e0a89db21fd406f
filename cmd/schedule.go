package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/scheduler"
)

// schedule-* flags manage scheduler.NotificationStore's NotificationEntry
// entries: a separate store from ReachSchedule (spec §3 "NotificationEntry
// (separate store, in-process scheduler only)"), targeting a specific
// paired chat id (or "all") via --schedule-user rather than a channel name.
var (
	scheduleAdd      bool
	scheduleList     bool
	scheduleRemoveID string
	scheduleTime     string
	scheduleOnce     string
	scheduleMessage  string
	scheduleUser     string
	scheduleTimezone string
)

func scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage scheduled notifications targeted at a chat (or all paired chats)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduleNotifications()
		},
	}
	cmd.Flags().BoolVar(&scheduleAdd, "schedule-add", false, "add a notification entry")
	cmd.Flags().BoolVar(&scheduleList, "schedule-list", false, "list all notification entries")
	cmd.Flags().StringVar(&scheduleRemoveID, "schedule-remove", "", "remove the notification entry with this id")
	cmd.Flags().StringVar(&scheduleTime, "schedule-time", "", "daily fire time, HH:MM (makes this a daily entry)")
	cmd.Flags().StringVar(&scheduleOnce, "schedule-once", "", "fire once at this RFC3339 timestamp (makes this a one-shot entry)")
	cmd.Flags().StringVar(&scheduleMessage, "schedule-message", "", "message text to deliver")
	cmd.Flags().StringVar(&scheduleUser, "schedule-user", "", "target chat id to deliver to; empty or \"all\" broadcasts to every paired chat")
	cmd.Flags().StringVar(&scheduleTimezone, "schedule-timezone", "", "IANA timezone for --schedule-time (default UTC)")
	return cmd
}

func runScheduleNotifications() error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}
	store := env.Notifications

	switch {
	case scheduleAdd:
		scheduleType := scheduler.ScheduleTypeDaily
		if scheduleOnce != "" {
			scheduleType = scheduler.ScheduleTypeOnce
		}
		entry, err := scheduler.NewNotificationEntry(scheduleType, scheduleTime, scheduleOnce, scheduleMessage, scheduleUser, scheduleTimezone)
		if err != nil {
			return err
		}
		if err := store.Add(entry); err != nil {
			return err
		}
		fmt.Printf("Added notification %s\n", entry.ID)
		return nil

	case scheduleList:
		entries, err := store.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No scheduled notifications.")
			return nil
		}
		for _, e := range entries {
			trigger := e.Time
			if e.ScheduleType == scheduler.ScheduleTypeOnce {
				trigger = e.OnceAt
			}
			fmt.Printf("%s  %-20s  %-10s  %s\n", e.ID, trigger, e.Target, e.Message)
		}
		return nil

	case scheduleRemoveID != "":
		found, err := store.Remove(scheduleRemoveID)
		if err != nil {
			return err
		}
		if !found {
			fmt.Printf("No notification with id %s\n", scheduleRemoveID)
			os.Exit(1)
		}
		fmt.Printf("Removed notification %s\n", scheduleRemoveID)
		return nil

	default:
		return fmt.Errorf("specify one of --schedule-add, --schedule-list, or --schedule-remove")
	}
}
