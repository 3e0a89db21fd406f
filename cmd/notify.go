package cmd

import (
	"context"
	"strconv"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/channels/telegram"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/scheduler"
)

// telegramNotifier builds a one-shot scheduler.Notifier that delivers a
// fired reach schedule or notification entry to Telegram, for the `reach
// --fire` CLI path (spec §4.8, where an external cron invokes this binary
// rather than the in-process Scheduler.Run ticker). target is either
// scheduler.TargetAll (broadcast to every paired chat, what every
// ReachSchedule fire passes) or a specific paired chat id (what a
// NotificationEntry fire passes per its own Target, spec §3).
func telegramNotifier(env *environment) scheduler.Notifier {
	return scheduler.NotifierFunc(func(ctx context.Context, channel, target, message string) (bool, error) {
		if channel != "" && channel != "telegram" {
			return false, nil
		}
		if env.Cfg.Telegram.BotToken == "" {
			return false, nil
		}
		bot, err := telegram.New(telegram.Config{
			Token:     env.Cfg.Telegram.BotToken,
			Proxy:     env.Cfg.Telegram.Proxy,
			AllowFrom: env.Cfg.Telegram.AllowFrom,
		}, nil, env.Logger)
		if err != nil {
			return false, err
		}

		if target == "" || target == scheduler.TargetAll {
			return bot.Broadcast(ctx, env.Pairing.PairedChatIDs(), message)
		}
		chatID, err := strconv.ParseInt(target, 10, 64)
		if err != nil {
			return false, err
		}
		return bot.Broadcast(ctx, []int64{chatID}, message)
	})
}
