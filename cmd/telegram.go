package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/channels/telegram"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/chat"
	"github.com/nextlevelbuilder/cursor-enhanced-go/internal/childagent"
)

const defaultShutdownTimeout = 10 * time.Second

var (
	telegramApprove     string
	telegramListPending bool
	telegramListPaired  bool
	telegramDebug       bool
	telegramMetricsAddr string
)

func telegramCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram chat front-end, or manage pairing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTelegram(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&telegramApprove, "approve", "", "approve a pending pairing code and exit")
	cmd.Flags().BoolVar(&telegramListPending, "list-pending", false, "print where pending pairing codes are stored and exit (the codes themselves are not listed)")
	cmd.Flags().BoolVar(&telegramListPaired, "list-paired", false, "list paired chat ids and exit")
	cmd.Flags().BoolVar(&telegramDebug, "debug", false, "verbose per-update logging")
	cmd.Flags().StringVar(&telegramMetricsAddr, "metrics-addr", "", "serve Prometheus /metrics on this address (e.g. 127.0.0.1:9090); disabled if empty")
	return cmd
}

func runTelegram(ctx context.Context) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	if telegramApprove != "" {
		chatID, ok, err := env.Pairing.Approve(telegramApprove)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("No pending pairing request matches that code.")
			return nil
		}
		fmt.Printf("Chat %d is now paired.\n", chatID)
		return nil
	}

	if telegramListPaired {
		ids := env.Pairing.PairedChatIDs()
		if len(ids) == 0 {
			fmt.Println("No paired chats.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	if telegramListPending {
		// PairingStore has no accessor for pending codes, so only the file
		// that holds them is reported.
		fmt.Println("Use the bot's /approve flow; pairing state lives under the home directory's .cursor-enhanced/telegram-pairing.json")
		return nil
	}

	if env.Cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is not configured")
	}

	// Child-agent runs started from the chat front-end carry the telegram
	// channel marker instead of the "cli" one set by buildEnvironment.
	env.ChildAgent.Env = childagent.EnvWithOverrides(childagent.Overrides{
		MCPConfigPath:      env.Cfg.MCPConfigPath,
		Channel:            "telegram",
		HomeAssistantToken: env.Cfg.HomeAssistantToken,
	})

	systemPrompt := systemPromptFor(env.Cfg, "default")
	router := chat.New(env.Pairing, env.NewThreads, env.Detached, env.Assembler, env.Dispatcher, env.ChildAgent,
		env.History, env.Tracker, systemPrompt, env.Logger, context.Background())

	channel, err := telegram.New(telegram.Config{
		Token:     env.Cfg.Telegram.BotToken,
		Proxy:     env.Cfg.Telegram.Proxy,
		AllowFrom: env.Cfg.Telegram.AllowFrom,
		Debug:     telegramDebug,
	}, router, env.Logger)
	if err != nil {
		return fmt.Errorf("create telegram channel: %w", err)
	}

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if telegramMetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv := &http.Server{Addr: telegramMetricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				env.Logger.Error("metrics listener failed", "error", err)
			}
		}()
		go func() {
			<-runCtx.Done()
			shutCtx, shutCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
			defer shutCancel()
			_ = metricsSrv.Shutdown(shutCtx)
		}()
		env.Logger.Info("metrics listener started", "addr", telegramMetricsAddr)
	}

	if err := channel.Start(runCtx); err != nil {
		return fmt.Errorf("start telegram channel: %w", err)
	}
	env.Logger.Info("telegram channel started")

	<-runCtx.Done()
	env.Logger.Info("shutting down telegram channel")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer stopCancel()
	return channel.Stop(stopCtx)
}
