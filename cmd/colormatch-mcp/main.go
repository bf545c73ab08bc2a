package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/colormatch-mcp/internal/config"
	"github.com/ironsheep/colormatch-mcp/internal/httpapi"
	"github.com/ironsheep/colormatch-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const envHelp = `Environment variables (overridden by flags):
  COLORMATCH_LOG_LEVEL, COLORMATCH_HTTP_ADDR, COLORMATCH_MAX_IMAGE_DIMENSION,
  COLORMATCH_MAX_UPLOAD_BYTES, COLORMATCH_MAX_IMAGE_PIXELS, COLORMATCH_MAX_CACHED_IMAGES,
  COLORMATCH_SAMPLE_STRIDE, COLORMATCH_QUANTIZE_STEP, COLORMATCH_COLOR_TOLERANCE,
  COLORMATCH_MAX_REGIONS, COLORMATCH_MAX_ANALYSIS_TIME,
  COLORMATCH_MIN_REGION_SIZE, COLORMATCH_MIN_PROMINENCE
`

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}
	if err := newRootCmd(&cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the validated configuration and logger from the persistent
// pre-run into the command bodies.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}

	root := &cobra.Command{
		Use:   "colormatch-mcp",
		Short: "MCP server for color region analysis and cross-image matching",
		Long: "colormatch-mcp finds the dominant color regions of an image and matches them\n" +
			"across images to anchor crossfades.\n\n" +
			"Without a subcommand it speaks the MCP protocol over stdin/stdout; logs go to\n" +
			"stderr. Setting --http (or COLORMATCH_HTTP_ADDR) serves the HTTP API instead.",
		Version:           Version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.HTTPAddr != "" {
				return a.serveHTTP(a.cfg.HTTPAddr)
			}
			return a.serveStdio(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	root.SetVersionTemplate(versionText())

	fs := flag.NewFlagSet("colormatch-mcp", flag.ContinueOnError)
	cfg.BindFlags(fs)
	root.PersistentFlags().AddGoFlagSet(fs)
	root.SetUsageTemplate(root.UsageTemplate() + "\n" + envHelp)

	root.AddCommand(
		&cobra.Command{
			Use:   "http [addr]",
			Short: "Serve the HTTP API (default address from --http, else :8080)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				addr := a.cfg.HTTPAddr
				if len(args) == 1 {
					addr = args[0]
				}
				if addr == "" {
					addr = ":8080"
				}
				return a.serveHTTP(addr)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			// Printing the version needs neither a valid config nor a logger.
			PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprint(cmd.OutOrStdout(), versionText())
			},
		},
	)
	return root
}

func versionText() string {
	return fmt.Sprintf("colormatch-mcp %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	// Logs go to stderr; stdout is for the MCP protocol
	logger, err := config.NewLogger(a.cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	logger.WithFields(logrus.Fields{"build_time": BuildTime, "commit": GitCommit}).
		Debugf("colormatch-mcp %s", Version)
	a.log = logger
	return nil
}

func (a *app) serveStdio(in io.Reader, out io.Writer) error {
	server.Version = Version
	srv := server.NewWithConfig(*a.cfg, a.log)
	if err := srv.Serve(in, out); err != nil {
		a.log.WithError(err).Error("server error")
		return err
	}
	return nil
}

func (a *app) serveHTTP(addr string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := httpapi.ListenAndServe(ctx, addr, httpapi.NewRouter(*a.cfg, a.log), a.log); err != nil {
		a.log.WithError(err).Error("http api error")
		return err
	}
	return nil
}
