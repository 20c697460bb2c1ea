// Package main is the Vocanote CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/ai"
	"github.com/hanmaru/vocanote/internal/bot"
	"github.com/hanmaru/vocanote/internal/config"
	"github.com/hanmaru/vocanote/internal/search"
	"github.com/hanmaru/vocanote/internal/server"
	"github.com/hanmaru/vocanote/internal/storage"
	"github.com/hanmaru/vocanote/internal/watcher"
	"github.com/hanmaru/vocanote/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "config.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer(os.Args[2:])
	case "bot":
		runBot(os.Args[2:])
	case "version":
		fmt.Println("vocanote", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: vocanote <command> [flags]

Commands:
  server    start the web server (HTTP API, web UI, WebSocket terminal)
  bot       start the Telegram bot
  version   print the version`)
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to config file")
	_ = fs.Parse(args)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vocab := storage.NewVocabularyStore(cfg.Storage.VocabularyPath, logger)
	chats := storage.NewChatStore(cfg.Storage.ChatSessionsPath, logger)
	bookmarks := storage.NewBookmarkStore(cfg.Storage.BookmarksPath, logger)

	archive, err := storage.NewArchiveStore(cfg.Storage.ArchivePath)
	if err != nil {
		logger.Warn("session archive disabled", zap.Error(err))
	} else {
		defer archive.Close()
		chats.SetArchive(archive)
	}

	index, err := search.NewWordIndex(cfg.Storage.SearchIndexPath)
	if err != nil {
		logger.Warn("vocabulary search disabled", zap.Error(err))
	} else {
		defer index.Close()
		if err := index.Rebuild(vocab.ListAll()); err != nil {
			logger.Warn("search index rebuild failed", zap.Error(err))
		}
	}

	var generator ai.Generator
	if cfg.AI.APIKey != "" {
		gemini, err := ai.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
		if err != nil {
			logger.Warn("gemini unavailable, using fallback entries only", zap.Error(err))
		} else {
			defer gemini.Close()
			generator = gemini
		}
	} else {
		logger.Warn("GOOGLE_API_KEY not set, using fallback entries only")
	}

	if cfg.Storage.WatchFilesOrDefault() {
		w := watcher.New(logger)
		w.WatchFile(cfg.Storage.VocabularyPath, vocab.Reload)
		w.WatchFile(cfg.Storage.ChatSessionsPath, chats.Reload)
		w.WatchFile(cfg.Storage.BookmarksPath, bookmarks.Reload)
		if err := w.Start(ctx); err != nil {
			logger.Warn("store file watcher disabled", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	// Retention sweep at startup and daily thereafter.
	retention := time.Duration(cfg.Chat.RetentionDays) * 24 * time.Hour
	chats.ClearOldSessions(retention)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				chats.ClearOldSessions(retention)
			}
		}
	}()

	srv := server.NewServer(vocab, chats, bookmarks, archive, generator, index, &cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}

func runBot(args []string) {
	fs := flag.NewFlagSet("bot", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "path to config file")
	_ = fs.Parse(args)

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Telegram.Token == "" {
		fmt.Fprintln(os.Stderr, "TELEGRAM_BOT_TOKEN is not set")
		os.Exit(1)
	}
	if cfg.AI.APIKey == "" {
		fmt.Fprintln(os.Stderr, "GOOGLE_API_KEY is not set")
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gemini, err := ai.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model, logger)
	if err != nil {
		logger.Fatal("failed to create gemini client", zap.Error(err))
	}
	defer gemini.Close()

	b, err := bot.New(cfg.Telegram.Token, gemini, logger)
	if err != nil {
		logger.Fatal("failed to create bot", zap.Error(err))
	}
	logger.Info("starting telegram bot")
	if err := b.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatal("bot stopped", zap.Error(err))
	}
}
