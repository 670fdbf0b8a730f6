package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studiowebux/tabkeys/internal/cli"
	"github.com/studiowebux/tabkeys/internal/config"
	"github.com/studiowebux/tabkeys/internal/store"
	"github.com/studiowebux/tabkeys/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tabkeys",
	Short: "tabkeys - keyboard shortcuts for tab groups",
	Long: `tabkeys maps keyboard chords to tab group actions.

Run without arguments to start the agent: it listens for chords, sends the
matching action to the controller and shows the "move tab to group" picker
when the controller asks for it.

Examples:
  tabkeys                                  # Start the agent
  tabkeys controller                       # Serve agents on the configured address
  tabkeys hotkeys list                     # Show the active chord table
  tabkeys hotkeys set alt+g load-custom-group 3
  tabkeys hotkeys list -q '[].action'      # JMESPath query
  tabkeys history                          # Recently dispatched actions`,
	Version: version.Current,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}

		// the screen belongs to the TUI, so logs go to a file
		logFile, err := config.OpenLogFile()
		if err != nil {
			return err
		}
		defer logFile.Close()

		logger, err := config.NewLogger(logFile, settings.LogLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		return cli.RunAgent(cmd.Context(), settings, logger)
	},
}

var controllerCmd = &cobra.Command{
	Use:   "controller",
	Short: "Run the controller that agents connect to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		if flagListen != "" {
			settings.ListenAddr = flagListen
		}

		logger, err := config.NewLogger(os.Stderr, settings.LogLevel)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)

		return cli.RunController(cmd.Context(), settings, cmd.OutOrStdout(), logger)
	},
}

var hotkeysCmd = &cobra.Command{
	Use:   "hotkeys",
	Short: "Inspect and edit the chord table",
}

var hotkeysListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the active chord table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st store.Store) error {
			return cli.ListHotkeys(cmd.Context(), st, cmd.OutOrStdout(), cli.ListOptions{
				Filter:  flagFilter,
				Query:   flagQuery,
				Actions: flagActions,
				JSON:    flagJSON,
				Copy:    flagCopy,
			})
		})
	},
}

var hotkeysCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the stored chord table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st store.Store) error {
			return cli.CheckHotkeys(cmd.Context(), st, cmd.OutOrStdout())
		})
	},
}

var hotkeysSetCmd = &cobra.Command{
	Use:   "set <chord> [action] [group-id]",
	Short: "Bind a chord to an action",
	Long: `Bind a chord such as "ctrl+shift+g" or "alt+down" to an action.

Without an action, an interactive picker lists every known action.
An existing entry for the same chord is replaced.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.SetOptions{Chord: args[0], Prompt: cli.IsInteractive()}
		if len(args) > 1 {
			opts.Action = args[1]
		}
		if len(args) > 2 {
			opts.GroupID = args[2]
		}
		return withStore(func(st store.Store) error {
			return cli.SetHotkey(cmd.Context(), st, cmd.OutOrStdout(), opts)
		})
	},
}

var hotkeysRemoveCmd = &cobra.Command{
	Use:   "remove <chord>",
	Short: "Unbind a chord",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st store.Store) error {
			return cli.RemoveHotkey(cmd.Context(), st, cmd.OutOrStdout(), args[0])
		})
	},
}

var hotkeysResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop the stored table and use the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(st store.Store) error {
			return cli.ResetHotkeys(cmd.Context(), st, cmd.OutOrStdout())
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently dispatched actions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadSettings(); err != nil {
			return err
		}
		return cli.ShowHistory(cmd.Context(), config.DatabasePath, cmd.OutOrStdout(), flagLimit)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, optionally checking for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tabkeys %s\n", version.Current)
		if !flagCheck {
			return nil
		}

		up, err := version.NewChecker().Check(cmd.Context(), version.Current)
		if err != nil {
			return err
		}
		if up.Available {
			fmt.Fprintf(out, "A newer version is available: %s (%s)\n", up.Latest, up.URL)
		} else {
			fmt.Fprintln(out, "You are up to date")
		}
		return nil
	},
}

// Global flags
var (
	flagConfig   string
	flagLogLevel string
)

// Flags for controller
var flagListen string

// Flags for hotkeys list
var (
	flagFilter  string
	flagQuery   string
	flagActions []string
	flagJSON    bool
	flagCopy    bool
)

// Flags for history and version
var (
	flagLimit int
	flagCheck bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Settings file (default: .tabkeys.yaml or ~/.tabkeys/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")

	controllerCmd.Flags().StringVarP(&flagListen, "listen", "l", "", "Listen address (overrides listenAddr)")

	hotkeysListCmd.Flags().StringVarP(&flagFilter, "filter", "f", "", "JMESPath filter expression")
	hotkeysListCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query or $(shell command)")
	hotkeysListCmd.Flags().StringSliceVarP(&flagActions, "action", "a", nil, "Only show chords bound to these actions")
	hotkeysListCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the table as JSON")
	hotkeysListCmd.Flags().BoolVar(&flagCopy, "copy", false, "Copy the output to the clipboard")

	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", cli.DefaultHistoryLimit, "Number of entries to show")
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check GitHub for a newer release")

	hotkeysCmd.AddCommand(hotkeysListCmd, hotkeysCheckCmd, hotkeysSetCmd, hotkeysRemoveCmd, hotkeysResetCmd)
	rootCmd.AddCommand(controllerCmd, hotkeysCmd, historyCmd, versionCmd)
}

// loadSettings initializes the config directory and reads the settings
func loadSettings() (config.Settings, error) {
	if err := config.Initialize(); err != nil {
		return config.Settings{}, fmt.Errorf("failed to initialize config: %w", err)
	}

	path := flagConfig
	if path == "" {
		path = config.GetSettingsFilePath()
	}
	settings, err := config.LoadSettings(path)
	if err != nil {
		return config.Settings{}, err
	}
	if flagLogLevel != "" {
		settings.LogLevel = flagLogLevel
	}
	return settings, nil
}

// withStore opens the configured hotkeys store for the duration of fn
func withStore(fn func(store.Store) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	st, _, err := cli.OpenStore(settings)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
