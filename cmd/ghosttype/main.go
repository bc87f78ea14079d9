// Package main provides the CLI entrypoint for ghosttype.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/ghosttype/ghosttype/pkg/config"
	"github.com/ghosttype/ghosttype/pkg/control"
	"github.com/ghosttype/ghosttype/pkg/history"
	"github.com/ghosttype/ghosttype/pkg/logging"
	"github.com/ghosttype/ghosttype/pkg/popup"
)

var (
	configPath  string
	addressFlag string

	startWPM       float64
	startClipboard bool

	historyLimit int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ghosttype",
		Short:         "Humanlike typing automation for browser documents",
		Long:          "ghosttype drives a browser session and types text into a document editor one character at a time, pacing keystrokes like a human typist.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ~/.ghosttype/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&addressFlag, "address", "", "daemon control address (overrides config)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newPauseCmd())
	rootCmd.AddCommand(newResumeCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newPingCmd())
	rootCmd.AddCommand(newPopupCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if addressFlag != "" {
		cfg.Control.Address = addressFlag
	}
	return cfg, nil
}

func newControlClient() (*control.Client, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	return control.NewClient(cfg.Control.Address), cfg, nil
}

func newStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start [text]",
		Short: "Start typing text into the document",
		Args:  cobra.ArbitraryArgs,
		RunE:  runStartCmd,
	}
	cmd.Flags().Float64Var(&startWPM, "wpm", 0, "typing speed in words per minute (default: config value)")
	cmd.Flags().BoolVar(&startClipboard, "from-clipboard", false, "read the text from the system clipboard")
	return cmd
}

func runStartCmd(_ *cobra.Command, args []string) error {
	client, cfg, err := newControlClient()
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	if startClipboard {
		if text != "" {
			return fmt.Errorf("pass text as arguments or use --from-clipboard, not both")
		}
		text, err = clipboard.ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read clipboard: %w", err)
		}
	}
	text = popup.SanitizeText(text)
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text to type")
	}

	wpm := startWPM
	if wpm <= 0 {
		wpm = cfg.Typing.DefaultWPM
	}

	resp, err := client.Start(text, wpm)
	if err != nil {
		return daemonError(err)
	}
	if resp.Error != "" {
		return fmt.Errorf("%s", resp.Error)
	}
	fmt.Printf("Typing %d characters at %.0f wpm\n", len([]rune(text)), wpm)
	return nil
}

func newPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the active typing session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSimpleCommand(control.ActionPause, "Paused")
		},
	}
}

func newResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused typing session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSimpleCommand(control.ActionResume, "Resumed")
		},
	}
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop and discard the active typing session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runSimpleCommand(control.ActionStop, "Stopped")
		},
	}
}

func runSimpleCommand(action string, okMessage string) error {
	client, _, err := newControlClient()
	if err != nil {
		return err
	}
	resp, err := client.Do(control.Request{Action: action})
	if err != nil {
		return daemonError(err)
	}
	if resp.Error != "" {
		return fmt.Errorf("%s", resp.Error)
	}
	fmt.Println(okMessage)
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a typing session is active",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			client, _, err := newControlClient()
			if err != nil {
				return err
			}
			typing, err := client.Status()
			if err != nil {
				return daemonError(err)
			}
			if typing {
				fmt.Println("typing")
			} else {
				fmt.Println("idle")
			}
			return nil
		},
	}
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the daemon is reachable",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			client, _, err := newControlClient()
			if err != nil {
				return err
			}
			resp, err := client.Ping()
			if err != nil {
				return daemonError(err)
			}
			fmt.Printf("%s (%s)\n", resp.Message, time.UnixMilli(resp.Timestamp).Format(time.RFC3339))
			return nil
		},
	}
}

func newPopupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "popup",
		Short: "Open the interactive control panel",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			client, cfg, err := newControlClient()
			if err != nil {
				return err
			}
			return popup.Run(client, int(cfg.Typing.DefaultWPM))
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded typing sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of sessions to show")
	return cmd
}

func runHistoryCmd(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("history is disabled (no history path configured)")
	}

	store, err := history.Open(cfg.History.Path, logging.Discard())
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	entries, err := store.List(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %8s  %6s  %7s  %s\n", "SESSION", "ENDED", "WPM", "CHARS", "TYPED", "OUTCOME")
	for _, e := range entries {
		fmt.Printf("%-36s  %-20s  %8.0f  %6d  %7d  %s\n",
			e.SessionID,
			e.EndedAt.Local().Format("2006-01-02 15:04:05"),
			e.WPM,
			e.Length,
			e.Emitted,
			e.Outcome,
		)
	}
	return nil
}

func daemonError(err error) error {
	return fmt.Errorf("daemon unreachable (%v): is ghosttype serve running?", err)
}
