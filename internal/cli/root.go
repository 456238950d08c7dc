// Package cli implements the buildserve command.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/f4ah6o/buildserve-go/internal/buildcheck"
	"github.com/f4ah6o/buildserve-go/internal/config"
	"github.com/f4ah6o/buildserve-go/internal/logger"
	"github.com/f4ah6o/buildserve-go/internal/server"
	"github.com/f4ah6o/buildserve-go/internal/static"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "buildserve",
		Short:        "Serve the frontend build output on port 3000",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := prepare(".", os.LookupEnv, stdout, stderr)
			if err != nil {
				return err
			}
			return s.ListenAndServe()
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

// prepare resolves configuration from dir and the environment, sets up
// logging, checks the build output and returns a server ready to listen.
func prepare(dir string, lookup func(string) (string, bool), stdout, stderr io.Writer) (*server.Server, error) {
	if err := config.LoadDotEnv(dir); err != nil {
		return nil, err
	}

	cfg, path, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.RegisterMIME(); err != nil {
		return nil, err
	}

	log := logger.Setup(logger.Config{
		Writer: stderr,
		Debug:  cfg.Log.Debug,
		Format: cfg.Log.Format,
	})
	if path != "" {
		log.Debug("config.loaded", "path", path)
	}

	dirView := static.NewDir(cfg.Root)
	if cfg.CheckBuild {
		checkBuild(log, dirView)
	}

	gin.SetMode(gin.ReleaseMode)
	return server.New(cfg, log, stdout), nil
}

func checkBuild(log *slog.Logger, dir *static.Dir) {
	report, err := buildcheck.Check(dir)
	if err != nil {
		log.Warn("buildcheck.failed", "root", dir.Root(), "error", err)
		return
	}

	switch {
	case !report.RootExists:
		log.Warn("buildcheck.root_missing", "root", report.Root)
	case !report.IndexFound:
		log.Warn("buildcheck.index_missing", "root", report.Root, "index", static.IndexFile)
	default:
		for _, p := range report.Missing {
			log.Warn("buildcheck.asset_missing", "path", p, "root", report.Root)
		}
		log.Debug("buildcheck.done", "referenced", report.Referenced, "missing", len(report.Missing))
	}
}
