package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/xingming/internal/logger"
	"github.com/ppiankov/xingming/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
	noCache bool

	logCloser io.Closer
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "xingming",
	Short: "Xingming - 姓名吉凶檢測 (name numerology with Zi Wei chart diagnosis)",
	Long: `Xingming reads a Zi Wei Dou Shu chart export, finds the palace carrying the
heaviest concentration of malefic stars, and derives the element (喜用神)
a name should strengthen. It then evaluates a name with the five grids
(五格), the 81 luck numbers and the three talents (三才), and suggests
stroke combinations for a new given name.

Every score is traceable to the markers and tables it came from.
Suggestions are advisory: manual overrides always win.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := viper.GetString("log.level")
		if verbose && !cmd.Flags().Changed("log-level") {
			level = "debug"
		}
		closer, err := logger.Init(level, viper.GetString("log.file"))
		if err != nil {
			return err
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute runs the root command. Cancelling ctx stops long-running
// commands such as serve and batch.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Xingming.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "xingming v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.xingming/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch)")
	flags.StringP("format", "f", "summary", "output format (summary, yaml, json)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "also write logs to this file")
	flags.String("data-dir", "", "directory with YAML reference tables (default: built-in)")
	flags.String("data-sqlite", "", "SQLite database with the reference tables")
	flags.String("llm-provider", "", "LLM provider for commentary (openai, ollama)")
	flags.String("llm-model", "", "LLM model name")

	// Bind flags to viper
	bind := map[string]string{
		"output.verbose": "verbose",
		"output.format":  "format",
		"log.level":      "log-level",
		"log.file":       "log-file",
		"data.dir":       "data-dir",
		"data.sqlite":    "data-sqlite",
		"llm.provider":   "llm-provider",
		"llm.model":      "llm-model",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in the per-user directory
		viper.AddConfigPath(model.HomeDir())
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match XINGMING_* (XINGMING_LLM_MODEL
	// for llm.model); the API key also honors OPENAI_API_KEY
	viper.SetEnvPrefix("XINGMING")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key", "XINGMING_LLM_API_KEY", "OPENAI_API_KEY")

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key of cfg with v so environment variables
// can override keys that are absent from the config file
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	flattenDefaults(v, "", tree)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("diagnosis.palace_aliases", map[string]string{})
	return nil
}

func flattenDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok {
			flattenDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig resolves the effective configuration: flags, environment,
// config file, then defaults
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cfg.Data.Dir != "" {
		cfg.Data.Dir = expandHome(cfg.Data.Dir)
	}
	if cfg.Cache.Dir != "" {
		cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	}
	return cfg, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
