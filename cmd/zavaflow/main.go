// Package main provides the zavaflow CLI: the workflow TUI plus headless
// helpers for scripting against the orchestrator service.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zavaflow/internal/backend"
	"zavaflow/internal/catalog"
	"zavaflow/internal/config"
	"zavaflow/internal/logging"
	"zavaflow/internal/session"
	"zavaflow/internal/tui"
)

var (
	// Version information (set at build time)
	version = "dev"

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#14b8a6"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#a78bfa"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// app carries what PersistentPreRunE resolves for every subcommand.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	log    zerolog.Logger
	closer io.Closer
}

func (a *app) controller() *session.Controller {
	return session.New(
		session.WithDelays(a.cfg.UI.CompleteDelay, a.cfg.UI.IdleDelay),
		session.WithLogger(a.log),
	)
}

func (a *app) client() *backend.Client {
	return backend.New(a.cfg.Backend.URL,
		backend.WithTimeout(a.cfg.Backend.Timeout),
		backend.WithLogger(a.log),
	)
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "zavaflow",
		Short: "Zava multi-agent workflow console",
		Long: titleStyle.Render("Zava Agent Workflow") + `

Chat with the orchestrator, watch it route each query to the HR, Marketing
or Products agent, and follow the grounded retrieval in the execution trace.

` + dimStyle.Render("Use 'zavaflow [command] --help' for more information."),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(a.v, configFile)
			if err != nil {
				return err
			}
			logger, closer, err := logging.New(cfg.Log.File, cfg.Log.Level)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.With().Str("cmd", cmd.Name()).Logger()
			a.closer = closer
			a.log.Info().Str("backend", cfg.Backend.URL).Str("version", version).Msg("starting")
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			return runTUI(a)
		},
	}
	if err := config.BindFlags(root, a.v); err != nil {
		panic(err)
	}

	root.AddCommand(newAskCmd(a), newCatalogCmd())
	return root
}

func runTUI(a *app) error {
	client := a.client()
	model := tui.New(tui.Options{
		Controller: a.controller(),
		Exchanger:  client,
		Health:     client,
		Catalog:    catalog.Default(),
		Timeout:    a.cfg.Backend.Timeout,
		BackendURL: a.cfg.Backend.URL,
		Logger:     a.log,
	})
	opts := []tea.ProgramOption{tea.WithMouseCellMotion()}
	if a.cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zavaflow fatal error: %v\n", err)
		os.Exit(1)
	}
}
