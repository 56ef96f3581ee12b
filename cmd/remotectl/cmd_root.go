package main

import (
	"fmt"
	"os"
	"strings"

	"remote-tools/pkg/protocol"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	flagCatalogs  []string
	flagNoDefault bool
	flagLogLevel  string
	flagConfig    string
)

// session is the per-invocation state resolved from flags, environment and
// config.toml before any subcommand runs.
type session struct {
	configDir string
	cfg       Config
	logger    zerolog.Logger
	registry  *protocol.Registry
}

var current session

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Validate and explore IR/RF remote-control commands",
	Long: appName + " validates remote-control commands such as nec:0x04:0x08 against a\n" +
		"protocol catalog and lets you browse the catalog interactively.\n\n" +
		"The built-in catalog is extended by ~/.config/" + appName + "/catalogs/*.yml,\n" +
		"$" + envCatalogs + " and --catalog.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
}

// setup resolves configuration and logging. The registry is loaded lazily
// by the commands that need it.
func setup() error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(dir, flagConfig)
	if err != nil {
		return err
	}
	level := firstNonEmpty(flagLogLevel, os.Getenv(envLogLevel), cfg.LogLevel, defaultLogLevel)
	logger, err := newLogger(os.Stderr, level)
	if err != nil {
		return err
	}
	current = session{configDir: dir, cfg: cfg, logger: logger}
	logger.Debug().Str("config_dir", dir).Str("log_level", level).Msg("configuration resolved")
	return nil
}

// registry loads the catalogs on first use.
func registry() (*protocol.Registry, error) {
	if current.registry != nil {
		return current.registry, nil
	}
	files, err := resolveCatalogFiles(current.configDir, current.cfg, flagCatalogs)
	if err != nil {
		return nil, err
	}
	reg, err := loadSources(current.logger, flagNoDefault || current.cfg.NoDefault, files)
	if err != nil {
		return nil, err
	}
	current.registry = reg
	protocol.Replace(reg)
	return reg, nil
}

// protocolCompletion completes protocol names for positional arguments.
func protocolCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := setup(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	reg, err := registry()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return matchNames(reg.ValidProtocols(), toComplete), cobra.ShellCompDirectiveNoFileComp
}

func matchNames(names []string, prefix string) []string {
	var out []string
	for _, n := range names {
		if strings.HasPrefix(strings.ToLower(n), strings.ToLower(prefix)) {
			out = append(out, n)
		}
	}
	return out
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&flagCatalogs, "catalog", "c", nil,
		"additional catalog YAML file (repeatable)")
	rootCmd.PersistentFlags().BoolVar(&flagNoDefault, "no-default", false,
		"do not load the built-in catalog")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "",
		fmt.Sprintf("log level: trace, debug, info, warn, error, disabled (default %q, env $%s)", defaultLogLevel, envLogLevel))
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"config file (default ~/.config/"+appName+"/config.toml)")
}
