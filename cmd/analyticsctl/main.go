// Command analyticsctl drives the e-learning analytics console from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/noah-isme/elearning-analytics-console/internal/console"
	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/pkg/config"
	"github.com/noah-isme/elearning-analytics-console/pkg/logger"
)

var readPasswordFunc = term.ReadPassword // mockable

var errDenied = errors.New("view not available")

type openFunc func(ctx context.Context, verbose bool, opts console.Options) (*console.Console, error)

type cli struct {
	verbose bool
	outDir  string
	open    openFunc
	in      io.Reader
	app     *console.Console
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(&cli{open: openConsole, in: os.Stdin})
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func openConsole(ctx context.Context, verbose bool, opts console.Options) (*console.Console, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.NewCLI(verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return console.New(ctx, cfg, logr, opts)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "analyticsctl",
		Short:         "Browse e-learning analytics from the terminal",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir := c.outDir
			if dir == "" {
				dir = "."
			}
			app, err := c.open(cmd.Context(), c.verbose, console.Options{ExportDir: dir, Flat: true})
			if err != nil {
				return err
			}
			c.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			_ = c.app.Logger.Sync()
			return c.app.Close()
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.dashboardCmd(),
		c.studentsCmd(),
		c.coursesCmd(),
		c.courseCmd(),
		c.searchCmd(),
		c.reportCmd(),
		c.profileCmd(),
		c.settingsCmd(),
	)
	return root
}

// enter runs the route guard for view before a command touches it.
func (c *cli) enter(view models.View) error {
	decision := c.app.Guard.Check(view)
	if decision.Allowed {
		return nil
	}
	c.app.Logger.Debug("guard denied view", zap.String("view", string(view)), zap.String("redirect", decision.Redirect))
	if view.Public() {
		return fmt.Errorf("%w: already signed in, run 'analyticsctl logout' first", errDenied)
	}
	return fmt.Errorf("%w: not signed in, run 'analyticsctl login' first", errDenied)
}
