package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/annostat/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "annostat v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "annostat",
	Short: "Annostat - corpus statistics for INCEpTION annotation exports",
	Long: `Annostat reads UIMA CAS JSON exports of annotated municipal meeting
minutes and produces corpus statistics, CSV tables, a quality report
and charts.

It does not judge whether an annotation is correct.

Annostat counts what the annotators marked, where offsets or labels are
broken it says so, and it never drops a document silently.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetVerbose(viper.GetBool("verbose"))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Annostat.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.annostat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.annostat")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// ANNOSTAT_OUTPUT_TABLES_DIR maps to output.tables_dir
	viper.SetEnvPrefix("ANNOSTAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
