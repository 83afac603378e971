package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/dataminer/internal/config"
	"github.com/nao1215/dataminer/internal/database"
	"github.com/nao1215/dataminer/internal/fetcher"
	applog "github.com/nao1215/dataminer/internal/log"
	"github.com/nao1215/dataminer/internal/report"
)

// loadConfig builds the configuration from defaults, the config file and
// the root command's persistent flags. Command specific flags are applied
// by each command afterwards.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	found := config.FindConfigFile(configPath)
	switch {
	case found != "":
		file, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		cfg.ApplyFile(file)
		cfg.ConfigFilePath = found
	case configPath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
	}

	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if cfg.Verbose, err = flags.GetBool("verbose"); err != nil {
		return nil, err
	}
	if cfg.JSONLog, err = flags.GetBool("json-log"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newLogger creates the command's logger and installs it as the default.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	var logger *slog.Logger
	if cfg.JSONLog {
		logger = applog.NewJSONLogger(cmd.ErrOrStderr(), cfg.Verbose)
	} else {
		logger = applog.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// openDB opens the database in cfg.DBDir, creating it when needed.
func openDB(cfg *config.Config, logger *slog.Logger) (*database.CrawlDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())
	return db, nil
}

// newFetcher builds the HTTP fetcher. The defaults section applies to every
// host; each configured site's cookie and headers go to that host only.
func newFetcher(cfg *config.Config) (*fetcher.Fetcher, error) {
	clientCfg := fetcher.ClientConfig{
		Timeout:      cfg.Timeout,
		UserAgent:    cfg.UserAgent,
		MaxBodySize:  cfg.MaxBodySize,
		ProxyAddress: cfg.ProxyAddress,
	}
	if file := cfg.SiteConfigs; file != nil {
		clientCfg.Headers = file.Defaults.Headers
		clientCfg.Cookie = file.Defaults.Cookie
		clientCfg.Sites = make(map[string]fetcher.SiteAuth, len(file.Sites))
		for host := range file.Sites {
			site := file.GetSiteConfig(host)
			clientCfg.Sites[host] = fetcher.SiteAuth{Headers: site.Headers, Cookie: site.Cookie}
		}
	}

	f, err := fetcher.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	return f, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// exportPages writes every stored page to path in format. A path of "-"
// writes to stdout. It returns the number of pages written.
func exportPages(ctx context.Context, cmd *cobra.Command, db *database.CrawlDB, format report.Format, path string) (int, error) {
	pages, err := db.ListPages(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list pages: %w", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, err := createOutputFile(path)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		out = f
	}

	exporter, err := report.NewExporter(format, out)
	if err != nil {
		return 0, err
	}
	if err := exporter.Export(pages); err != nil {
		return 0, err
	}
	return len(pages), nil
}

// createOutputFile creates path and its parent directories. Exports can
// contain personal data, so the file is readable by the owner only.
func createOutputFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
