package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/annostat/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Annostat configuration",
	Long: `Manage Annostat configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (ANNOSTAT_*)
3. Config file (~/.annostat/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out, "  Current Configuration")
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}
		fmt.Fprintln(out, string(yamlData))

		fmt.Fprintln(out, "═══════════════════════════════════════════════════════════")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration hierarchy (highest to lowest priority):")
		fmt.Fprintln(out, "  1. CLI flags")
		fmt.Fprintln(out, "  2. Environment variables (ANNOSTAT_*, e.g. ANNOSTAT_OUTPUT_TABLES_DIR)")
		fmt.Fprintln(out, "  3. Config file (~/.annostat/config.yaml)")
		fmt.Fprintln(out, "  4. Defaults")
		fmt.Fprintln(out)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.annostat/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := home + "/.annostat"
		configPath, err := writeDefaultConfig(configDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Created default configuration: %s\n", configPath)
		fmt.Fprintf(out, "\nTo view the configuration:\n")
		fmt.Fprintf(out, "  annostat config show\n")
		fmt.Fprintf(out, "\nTo customize, edit the file with your preferred editor:\n")
		fmt.Fprintf(out, "  $EDITOR %s\n", configPath)
		fmt.Fprintf(out, "\n")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// loadConfig merges the global viper state over the built-in defaults
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

// decodeConfig registers every default key on v so env vars are seen by Unmarshal,
// then decodes v into a fresh config
func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()

	v.SetDefault("input.dir", cfg.Input.Dir)
	v.SetDefault("input.extension", cfg.Input.Extension)
	v.SetDefault("output.tables_dir", cfg.Output.TablesDir)
	v.SetDefault("output.charts_dir", cfg.Output.ChartsDir)
	v.SetDefault("output.sqlite", cfg.Output.SQLite)
	v.SetDefault("output.charts", cfg.Output.Charts)
	v.SetDefault("output.static_charts", cfg.Output.StaticCharts)
	v.SetDefault("output.verbose", cfg.Output.Verbose)
	v.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	v.SetDefault("analysis.top_n", cfg.Analysis.TopN)
	v.SetDefault("charts.width", cfg.Charts.Width)
	v.SetDefault("charts.height", cfg.Charts.Height)
	v.SetDefault("municipality.unknown", cfg.Municipality.Unknown)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if v.GetBool("verbose") {
		cfg.Output.Verbose = true
	}
	if cfg.Concurrency.Workers < 1 {
		cfg.Concurrency.Workers = 1
	}

	return cfg, nil
}

// writeDefaultConfig writes the commented default config into dir and returns its path.
// An existing file is never overwritten.
func writeDefaultConfig(dir string) (path string, err error) {
	path = dir + "/config.yaml"

	if _, statErr := os.Stat(path); statErr == nil {
		return "", fmt.Errorf("config file already exists: %s\nUse 'annostat config show' to view it, or delete it first to recreate", path)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("error marshaling config: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close config file: %w", closeErr)
		}
	}()

	// Helper for writing with error checking
	printf := func(format string, a ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(f, format, a...)
	}

	printf("# Annostat Configuration File\n")
	printf("#\n")
	printf("# Configuration hierarchy (highest to lowest priority):\n")
	printf("#   1. CLI flags\n")
	printf("#   2. Environment variables (ANNOSTAT_*)\n")
	printf("#   3. This config file\n")
	printf("#   4. Built-in defaults\n\n")
	printf("%s", yamlData)
	printf("\n# concurrency.workers defaults to the number of CPUs of the machine that ran 'config init'\n")
	printf("# output.sqlite enables the database export when set to a file path\n")

	if err != nil {
		return "", fmt.Errorf("error writing config: %w", err)
	}
	return path, nil
}
