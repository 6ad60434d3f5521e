// Package cli implements the corvoid command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ato/corvoid/pkg/buildinfo"
	"github.com/ato/corvoid/pkg/cache"
	"github.com/ato/corvoid/pkg/observability"
	"github.com/ato/corvoid/pkg/pom"
	"github.com/ato/corvoid/pkg/repository"
	"github.com/ato/corvoid/pkg/resolve"
	"github.com/ato/corvoid/pkg/workspace"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "corvoid"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	flags     globalFlags
	downloads *downloadCounter
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	dir             string
	config          string
	repository      string
	localRepository string
	workers         int
	offline         bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		downloads: &downloadCounter{},
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Corvoid resolves Maven dependencies",
		Long:         `Corvoid resolves the dependency tree of a Maven project, keeps a local artifact cache in the ~/.m2 layout and prints classpaths.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.SetCacheHooks(c.downloads)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	f := root.PersistentFlags()
	f.StringVarP(&c.flags.dir, "dir", "C", ".", "project directory")
	f.StringVar(&c.flags.config, "config", "", "config file (default $XDG_CONFIG_HOME/corvoid/config.toml)")
	f.StringVar(&c.flags.repository, "repository", "", "remote repository URL")
	f.StringVar(&c.flags.localRepository, "local-repository", "", "local repository directory")
	f.IntVar(&c.flags.workers, "workers", 0, "concurrent downloads")
	f.BoolVar(&c.flags.offline, "offline", false, "never download, use only the local repository")

	// Register all subcommands
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.classpathCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.outdatedCommand())
	root.AddCommand(c.latestCommand())
	root.AddCommand(c.modulesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// config loads the config file and applies the flags set on cmd.
func (c *CLI) config(cmd *cobra.Command) (Config, error) {
	path := c.flags.config
	if path == "" {
		var err error
		if path, err = configPath(); err != nil {
			return defaultConfig(), err
		}
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("repository") {
		cfg.Repository = c.flags.repository
	}
	if flags.Changed("local-repository") {
		cfg.LocalRepository = c.flags.localRepository
	}
	if flags.Changed("workers") {
		cfg.Workers = c.flags.workers
	}
	if flags.Changed("offline") {
		cfg.Offline = c.flags.offline
	}
	return cfg, cfg.validate()
}

// =============================================================================
// Session Factory
// =============================================================================

// session wires the repository client, cache and workspace for one command.
type session struct {
	cfg    Config
	cache  *cache.Cache
	ws     *workspace.Workspace
	logger *log.Logger
}

func (c *CLI) open(cmd *cobra.Command) (*session, error) {
	cfg, err := c.config(cmd)
	if err != nil {
		return nil, err
	}
	root, err := cfg.localRepository()
	if err != nil {
		return nil, err
	}

	var remote cache.Downloader
	if !cfg.Offline {
		client, err := repository.New(cfg.Repository, repository.Options{
			Timeout:    cfg.Timeout.Duration,
			Attempts:   cfg.Retries,
			RetryDelay: cfg.RetryDelay.Duration,
			Logger:     c.Logger,
		})
		if err != nil {
			return nil, err
		}
		remote = client
	}

	ch, err := cache.New(root, remote, cache.Options{
		Logger:      c.Logger,
		MetadataTTL: cfg.MetadataTTL.Duration,
		Offline:     cfg.Offline,
	})
	if err != nil {
		return nil, err
	}
	ws, err := workspace.New(ch, workspace.Options{Logger: c.Logger})
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, cache: ch, ws: ws, logger: c.Logger}, nil
}

// project loads the project in the --dir directory.
func (c *CLI) project(cmd *cobra.Command) (*session, *pom.Model, error) {
	s, err := c.open(cmd)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.ws.LoadProject(cmd.Context(), c.flags.dir)
	if err != nil {
		return nil, nil, err
	}
	return s, m, nil
}

// resolve builds the dependency tree of the project in --dir.
func (c *CLI) resolve(cmd *cobra.Command) (*session, *resolve.Tree, error) {
	s, m, err := c.project(cmd)
	if err != nil {
		return nil, nil, err
	}
	prog := newProgress(s.logger)
	r := resolve.New(s.ws, resolve.Options{Workers: s.cfg.Workers, Logger: s.logger})
	tree, err := r.Resolve(cmd.Context(), m)
	if err != nil {
		return nil, nil, err
	}
	prog.debug("resolved %d artifacts", tree.Len()-1)
	return s, tree, nil
}
