// Package telegram is the Telegram transport adapter for the Chat
// Front-End (spec §4.9): it owns the long-polling bot lifecycle and
// delegates all routing/formatting/chunking decisions to chat.Router,
// grounded on the teacher's telego-based Channel (Start/Stop/pollCancel
// lifecycle, proxy support, menu command sync-with-retry).
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/chat"
)

// Config is the subset of Telegram-specific settings the adapter needs.
type Config struct {
	Token     string
	Proxy     string
	AllowFrom []string
	Debug     bool
}

// Channel connects chat.Router to Telegram via the Bot API long-polling
// transport.
type Channel struct {
	bot        *telego.Bot
	router     *chat.Router
	allowList  []string
	logger     *slog.Logger
	running    bool
	pollCancel context.CancelFunc
	pollDone   chan struct{}
	debug      bool
}

// New creates a Telegram Channel wired to router.
func New(cfg Config, router *chat.Router, logger *slog.Logger) (*Channel, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts []telego.BotOption
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, err)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Channel{bot: bot, router: router, allowList: cfg.AllowFrom, logger: logger, debug: cfg.Debug}, nil
}

// Name returns the channel identifier.
func (c *Channel) Name() string { return "telegram" }

// IsRunning reports whether the long-polling loop is active.
func (c *Channel) IsRunning() bool { return c.running }

// IsAllowed reports whether senderID is permitted to interact with the bot.
// An empty allowlist permits everyone — pairing is the actual access gate.
func (c *Channel) IsAllowed(senderID string) bool {
	if len(c.allowList) == 0 {
		return true
	}
	for _, allowed := range c.allowList {
		if allowed == senderID {
			return true
		}
	}
	return false
}

// Start begins long polling for Telegram updates.
func (c *Channel) Start(ctx context.Context) error {
	c.logger.Info("starting telegram bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	c.running = true
	c.logger.Info("telegram bot connected", "username", c.bot.Username())

	go func() {
		commands := DefaultMenuCommands()
		for attempt := 1; attempt <= 3; attempt++ {
			if err := c.SyncMenuCommands(pollCtx, commands); err != nil {
				c.logger.Warn("failed to sync telegram menu commands", "error", err, "attempt", attempt)
				if attempt < 3 {
					select {
					case <-pollCtx.Done():
						return
					case <-time.After(time.Duration(attempt*5) * time.Second):
					}
				}
			} else {
				c.logger.Info("telegram menu commands synced")
				return
			}
		}
	}()

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					c.logger.Info("telegram updates channel closed")
					return
				}
				if update.Message != nil {
					c.handleMessage(pollCtx, update.Message)
				}
			}
		}
	}()

	return nil
}

// Stop cancels long polling and waits for the polling goroutine to exit so
// Telegram releases the getUpdates lock before a new instance starts.
func (c *Channel) Stop(ctx context.Context) error {
	c.logger.Info("stopping telegram bot")
	c.running = false

	if c.pollCancel != nil {
		c.pollCancel()
	}
	if c.pollDone != nil {
		select {
		case <-c.pollDone:
			c.logger.Info("telegram bot stopped")
		case <-time.After(10 * time.Second):
			c.logger.Warn("telegram polling goroutine did not exit within timeout")
		}
	}
	return nil
}

func (c *Channel) handleMessage(ctx context.Context, message *telego.Message) {
	if message.From == nil || message.Text == "" {
		return
	}

	senderID := strconv.FormatInt(message.From.ID, 10)
	if !c.IsAllowed(senderID) {
		if c.debug {
			c.logger.Debug("update rejected by allowlist", "sender_id", senderID, "chat_id", message.Chat.ID)
		}
		return
	}

	chatID := strconv.FormatInt(message.Chat.ID, 10)
	if c.debug {
		c.logger.Debug("update received", "sender_id", senderID, "chat_id", chatID, "text", message.Text)
	}
	reply := c.router.HandleMessage(ctx, chatID, senderID, message.Text)
	if c.debug {
		c.logger.Debug("update handled", "chat_id", chatID, "reply_len", len(reply.Text))
	}
	c.sendReply(ctx, message.Chat.ID, reply)
}

// sendReply chunks and sends reply, falling back to plain text per-chunk
// when a chunk boundary leaves HTML tags unbalanced (spec §4.9 "Chunking").
func (c *Channel) sendReply(ctx context.Context, chatID int64, reply chat.Reply) {
	chunks := chat.ChunkMessage(reply.Text, 4090)
	for _, piece := range chunks {
		text, useHTML := chat.ChunkSendArgs(piece, reply.HTML)
		msg := tu.Message(tu.ID(chatID), text)
		if useHTML {
			msg.ParseMode = telego.ModeHTML
		}
		if _, err := c.bot.SendMessage(ctx, msg); err != nil {
			c.logger.Warn("failed to send telegram message", "chat_id", chatID, "error", err)
		}
	}
}

// Broadcast sends text to every chat id in recipients, used by the
// Scheduler Core's Notifier to deliver a fired reach schedule (spec §4.8
// "deliver to a channel"). Returns true if at least one send succeeded.
func (c *Channel) Broadcast(ctx context.Context, recipients []int64, text string) (bool, error) {
	sent := false
	for _, chatID := range recipients {
		for _, piece := range chat.ChunkMessage(text, 4090) {
			if _, err := c.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), piece)); err != nil {
				c.logger.Warn("failed to send telegram message", "chat_id", chatID, "error", err)
				continue
			}
			sent = true
		}
	}
	return sent, nil
}

// SyncMenuCommands registers bot commands with Telegram via setMyCommands.
func (c *Channel) SyncMenuCommands(ctx context.Context, commands []telego.BotCommand) error {
	if err := c.bot.DeleteMyCommands(ctx, nil); err != nil {
		c.logger.Debug("deleteMyCommands failed (may not exist)", "error", err)
	}
	if len(commands) == 0 {
		return nil
	}
	return c.bot.SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands})
}

// DefaultMenuCommands returns the bot's menu commands (spec §4.9).
func DefaultMenuCommands() []telego.BotCommand {
	return []telego.BotCommand{
		{Command: "start", Description: "Request pairing with this bot"},
		{Command: "approve", Description: "Approve a pending pairing code"},
		{Command: "re", Description: "View or continue a new-thread agent"},
		{Command: "reports", Description: "List recent detached run reports"},
	}
}
