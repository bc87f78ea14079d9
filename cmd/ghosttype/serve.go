package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghosttype/ghosttype/pkg/actor"
	"github.com/ghosttype/ghosttype/pkg/browser"
	"github.com/ghosttype/ghosttype/pkg/control"
	"github.com/ghosttype/ghosttype/pkg/emitter"
	"github.com/ghosttype/ghosttype/pkg/engine"
	"github.com/ghosttype/ghosttype/pkg/history"
	"github.com/ghosttype/ghosttype/pkg/locator"
	"github.com/ghosttype/ghosttype/pkg/logging"
	"github.com/ghosttype/ghosttype/pkg/supervisor"
)

var (
	serveHeadless bool
	serveURL      string
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the typing daemon",
		Long:  "Launches a browser session, navigates to the configured document, and serves typing commands on the control address until interrupted.",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().BoolVar(&serveHeadless, "headless", false, "run the browser without a visible window")
	cmd.Flags().StringVar(&serveURL, "url", "", "document to open (overrides config)")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = serveHeadless
	}
	if serveURL != "" {
		cfg.Document.URL = serveURL
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, logErr := logging.NewLogger("daemon")
	if logErr != nil {
		fmt.Printf("Warning: file logging unavailable: %v\n", logErr)
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manager := browser.NewManager(log)
	if err := manager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize browser runtime: %w", err)
	}
	defer manager.Shutdown()

	session, err := manager.OpenSession(browser.Options{
		Headless:       cfg.Browser.Headless,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		TimeoutMs:      cfg.Browser.TimeoutMs,
	})
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}

	if cfg.Document.URL != "" {
		if err := session.Navigate(cfg.Document.URL); err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
	}

	loc := locator.New(session.Document(), cfg.Locator, log)
	em := emitter.New(cfg.Emitter, log)
	eng := engine.New(loc, em, log)
	if cfg.Typing.MaxTextLength > 0 {
		eng.SetMaxTextLength(cfg.Typing.MaxTextLength)
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path, log)
		if err != nil {
			log.Errorf("history disabled: %v", err)
		} else {
			eng.SetRecorder(store)
			defer store.Close()
		}
	}

	act := actor.New(eng, log)
	sup, err := supervisor.New(session, act, cfg.Document.URLPattern, log)
	if err != nil {
		return err
	}
	sup.Watch()

	srv := control.NewServer(cfg.Control.Address, act, log)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start control server: %w", err)
	}
	fmt.Printf("ghosttype daemon listening on %s\n", srv.Addr())
	log.Infof("daemon ready on %s", srv.Addr())

	<-ctx.Done()
	fmt.Println("\nShutting down...")

	eng.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("control server shutdown: %v", err)
	}
	return nil
}
