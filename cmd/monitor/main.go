package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hush-bush/metadao-monitor/internal/blockchain/solana"
	"github.com/hush-bush/metadao-monitor/internal/config"
	"github.com/hush-bush/metadao-monitor/internal/logger"
	"github.com/hush-bush/metadao-monitor/internal/monitor"
	"github.com/hush-bush/metadao-monitor/internal/notify"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to config file")
	flag.Parse()

	// .env is optional; real environment variables always win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     50,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	startupLog := log.WithOperation("startup")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := solana.NewClient(cfg.RPCList, log.WithComponent("rpc"))
	if err != nil {
		startupLog.Fatal("Failed to connect to Solana RPC", zap.Error(err))
	}

	reader, err := solana.NewBalanceReader(client, cfg.WalletAddress, cfg.TokenMint,
		cfg.TokenDecimals, log.WithComponent("balance"))
	if err != nil {
		startupLog.Fatal("Failed to create balance reader", zap.Error(err))
	}

	notifier := notify.NewClient(cfg.DiscordWebhookURL, cfg.WalletAddress,
		cfg.TokenSymbol, log.WithComponent("notify"))

	session, err := monitor.NewSession(monitor.SessionConfig{
		Address:      cfg.WalletAddress,
		TokenSymbol:  cfg.TokenSymbol,
		Source:       reader,
		Notifier:     notifier,
		Logger:       log.WithComponent("session"),
		PollInterval: time.Duration(cfg.CheckInterval) * time.Second,
	})
	if err != nil {
		startupLog.Fatal("Failed to create monitoring session", zap.Error(err))
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return session.Run(gCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("Monitoring terminated", zap.Error(err))
	}

	log.Info("Monitoring stopped by user")
}
