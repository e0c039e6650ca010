package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alextanhongpin/go-social/domain"
	"github.com/alextanhongpin/go-social/infra"
	"github.com/alextanhongpin/go-social/pkg/cipher"
	"github.com/alextanhongpin/go-social/server"
	"github.com/alextanhongpin/go-social/usecase"
)

type options struct {
	host      string
	port      int
	opsAddr   string
	store     string
	dataDir   string
	redisAddr string
	keyFile   string
	logLevel  string
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:          "go-social",
		Short:        "Encrypted TCP social-graph server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.host, "host", "127.0.0.1", "address to bind")
	flags.IntVar(&opts.port, "port", 8080, "port to bind")
	flags.StringVar(&opts.opsAddr, "ops-addr", "127.0.0.1:9090", "ops endpoint address (health, stats, metrics, pprof)")
	flags.StringVar(&opts.store, "store", "badger", "account store backend: badger or redis")
	flags.StringVar(&opts.dataDir, "data-dir", "data", "data directory for the badger store")
	flags.StringVar(&opts.redisAddr, "redis-addr", "127.0.0.1:6379", "redis address for --store=redis")
	flags.StringVar(&opts.keyFile, "key-file", filepath.Join("shared", "secret.key"), "shared-secret key file, generated when absent")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	logger := newLogger(opts.logLevel)
	slog.SetDefault(logger)

	key, err := cipher.LoadKey(opts.keyFile)
	if err != nil {
		return err
	}
	box, err := cipher.New(key)
	if err != nil {
		return err
	}

	store, err := newStore(opts, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	social := usecase.NewSocial(store)
	if err := social.Load(ctx); err != nil {
		return err
	}

	go func() {
		logger.Info("ops endpoint listening", "addr", opts.opsAddr)
		if err := http.ListenAndServe(opts.opsAddr, server.NewOpsHandler(social)); err != nil {
			logger.Error("ops endpoint failed", "error", err)
		}
	}()

	srv := server.New(
		net.JoinHostPort(opts.host, fmt.Sprint(opts.port)),
		box,
		server.NewDispatcher(social, logger),
		logger,
	)
	if err := srv.Listen(); err != nil {
		return err
	}
	return srv.Serve(ctx)
}

func newStore(opts options, logger *slog.Logger) (domain.AccountStore, error) {
	switch opts.store {
	case "badger":
		return infra.NewBadgerStore(infra.BadgerConfig{
			Path:   filepath.Join(opts.dataDir, "accounts"),
			Logger: logger,
		})
	case "redis":
		rdb, err := infra.NewRedis(opts.redisAddr)
		if err != nil {
			return nil, err
		}
		return infra.NewRedisStore(rdb), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.store)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
