package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/launchtrack/timeclock/internal/bot"
	"github.com/launchtrack/timeclock/internal/clock"
	"github.com/launchtrack/timeclock/internal/config"
	"github.com/launchtrack/timeclock/internal/media"
	"github.com/launchtrack/timeclock/internal/sheets"
	"github.com/launchtrack/timeclock/internal/store"
	"github.com/launchtrack/timeclock/internal/telegram"
)

var serveCfgPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveCfgPath, "config", "", "Config file (default ~/.timeclock/config.yaml)")
}

func runServe(cmd *cobra.Command, args []string) error {
	path := serveCfgPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	secrets := config.SecretsFromEnv()

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if secrets.BotToken == "" {
		logger.Error("TELEGRAM_TOKEN is not set")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, secrets)
	if err != nil {
		return err
	}
	if err := st.EnsureSheets(ctx); err != nil {
		return fmt.Errorf("preparing worksheets: %w", err)
	}

	tg := telegram.New(secrets.BotToken)

	opts := bot.Options{
		Zone:   clock.FixedZone(cfg.Timezone),
		Logger: logger,
	}
	if secrets.TranscribeAPIKey != "" {
		opts.Transcriber = media.NewWhisperTranscriber(
			secrets.TranscribeAPIKey, cfg.Media.TranscribeModel, cfg.Media.Language)
	} else {
		logger.Warn("OPENAI_API_KEY not set, voice notes disabled")
	}
	if secrets.ScanAPIKey != "" {
		opts.TableParser = media.NewDocParser(secrets.ScanAPIKey, cfg.Media.Language)
	} else {
		logger.Warn("LLAMA_PARSE_API_KEY not set, table scans disabled")
	}

	b := bot.New(tg, st, opts)

	logger.Info("bot started", "version", bot.Version, "spreadsheet", cfg.Spreadsheet)
	poll(ctx, logger, tg, b)

	b.Wait()
	logger.Info("bot stopped")
	return nil
}

// poll feeds updates to the dispatcher in arrival order. Handing updates
// over one at a time keeps each user's events sequential.
func poll(ctx context.Context, logger *slog.Logger, tg *telegram.Client, b *bot.Bot) {
	var offset int64
	for {
		updates, err := tg.Updates(ctx, offset)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			logger.Error("polling updates failed", "error", err)
			select {
			case <-time.After(5 * time.Second):
				continue
			case <-ctx.Done():
				return
			}
		}
		for _, upd := range updates {
			b.HandleUpdate(ctx, upd)
			offset = upd.UpdateID + 1
		}
	}
}

func openStore(ctx context.Context, cfg config.Config, secrets config.Secrets) (store.Store, error) {
	if secrets.SheetKeyPath == "" {
		return nil, errors.New("GSHEET_KEY_PATH is not set")
	}
	client, err := sheets.NewClient(ctx, secrets.SheetKeyPath, cfg.Spreadsheet)
	if err != nil {
		return nil, fmt.Errorf("connecting to spreadsheet %q: %w", cfg.Spreadsheet, err)
	}
	return store.New(client, cfg.Operators, cfg.FallbackSheet), nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
