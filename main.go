package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/antibyte/retrobasic/pkg/auth"
	"github.com/antibyte/retrobasic/pkg/configuration"
	"github.com/antibyte/retrobasic/pkg/console"
	"github.com/antibyte/retrobasic/pkg/logger"
	"github.com/antibyte/retrobasic/pkg/resources"
	"github.com/antibyte/retrobasic/pkg/terminal"
	"github.com/antibyte/retrobasic/pkg/tinybasic"
	"github.com/antibyte/retrobasic/pkg/virtualfs"
)

func main() {
	configPath := flag.String("config", "settings.cfg", "settings file")
	hashPassword := flag.String("hash-password", "", "print the bcrypt hash of a password for [Auth] password_hash and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	// Configuration comes first, everything else reads it.
	if err := configuration.Initialize(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info(logger.AreaConfig, "system started, configuration loaded from %s", *configPath)

	if err := run(); err != nil {
		logger.Error(logger.AreaGeneral, "%v", err)
		logger.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Close()
}

func run() error {
	store, err := virtualfs.OpenFromConfig()
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limits := tinybasic.LimitsFromConfig()
	switch mode := configuration.GetString("Console", "mode", "local"); mode {
	case "local":
		return runLocal(ctx, store, limits)
	case "websocket":
		return runServer(ctx, store, limits)
	default:
		return fmt.Errorf("unknown console mode %q", mode)
	}
}

// runLocal runs one interpreter on the process terminal.
func runLocal(ctx context.Context, store virtualfs.Store, limits tinybasic.Limits) error {
	term, err := console.Open()
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	defer term.Close()

	basic := tinybasic.NewTinyBASIC(term, store, limits)
	basic.SetSessionID("local")
	if err := basic.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// runServer serves interpreters to browsers until ctx is cancelled.
func runServer(ctx context.Context, store virtualfs.Store, limits tinybasic.Limits) error {
	sessions := resources.NewSessionManagerFromConfig()
	handler := terminal.NewHandler(sessions, func(ctx context.Context, c *terminal.Client) {
		basic := tinybasic.NewTinyBASIC(c, store, limits)
		basic.SetSessionID(c.SessionID())
		if err := basic.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn(logger.AreaSession, "session %s ended: %v", c.SessionID(), err)
		}
	})
	if !auth.PasswordRequired() {
		logger.Warn(logger.AreaAuth, "no access password configured, every visitor gets a session")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/session", auth.HandleCreateSession)
	mux.Handle("/ws", handler)

	listen := configuration.GetString("Network", "listen", "127.0.0.1:8080")
	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(logger.AreaWebSocket, "listening on %s", listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(logger.AreaGeneral, "shutting down")
	sessions.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
