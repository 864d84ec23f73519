// Package cli implements the fddplan command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adriangreen/fddplan/internal/config"
	"github.com/adriangreen/fddplan/internal/debug"
	"github.com/adriangreen/fddplan/internal/memory"
	"github.com/adriangreen/fddplan/internal/project"
)

// app is the state shared by all subcommands of one invocation.
type app struct {
	configPath string
	debug      bool

	cfg    *config.Config
	styles *Styles
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "fddplan",
		Short: "Edit Feature Driven Development plans from the terminal",
		Long: `fddplan reads and edits FDD plans: programs, projects, aspects,
subjects, activities and features with their milestones. Completion and
target dates are derived from feature milestones on every change.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvConfig+" or the user config dir)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "write debug logging to stderr")

	cmd.AddCommand(
		a.showCommand(),
		a.searchCommand(),
		a.addCommand(),
		a.renameCommand(),
		a.moveCommand(),
		a.deleteCommand(),
		a.watchCommand(),
		a.recentCommand(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.debug {
		debug.SetEnabled(true)
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.styles = NewStyles(cfg.Theme)
	return nil
}

// openState opens the session memory. Failure only costs the recent list
// and view restore, so it is reported and otherwise ignored.
func (a *app) openState(cmd *cobra.Command) *memory.Helper {
	store, err := memory.Open(a.cfg)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to open state: %v\n", err)
		return nil
	}
	return memory.NewHelper(store, a.cfg.RecentLimit)
}

// withSession opens the plan at path, runs fn and, when save is set and fn
// changed the tree, writes it back.
func (a *app) withSession(cmd *cobra.Command, path string, save bool, fn func(*project.Session) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	state := a.openState(cmd)
	if state != nil {
		defer func() {
			if cerr := state.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}

	s, err := project.Open(ctx, path, a.cfg, project.Options{State: state})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, w := range s.Warnings() {
		fmt.Fprintln(cmd.ErrOrStderr(), a.styles.Warning.Render("warning: "+w.String()))
	}

	if err := fn(s); err != nil {
		return err
	}
	if save && s.State().Dirty {
		desc := s.State().Undo
		if err := s.Save(); err != nil {
			return fmt.Errorf("failed to save %s: %w", path, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), desc)
	}
	return nil
}

// signalContext returns a context cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
