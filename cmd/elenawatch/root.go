package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "elenawatch",
	Short: "ElenaWatch device development tools",
	Long: `elenawatch talks to an ElenaWatch device over a serial link.

It can push a file to the device with the YMODEM protocol, list the serial
ports present on the system, and monitor raw device output.

Defaults are read from $HOME/.elenawatch.yaml and ELENAWATCH_* environment
variables; command line flags take precedence.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initConfig()

		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.elenawatch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable protocol-level debug logging")

	viper.SetEnvPrefix("ELENAWATCH")
	viper.AutomaticEnv()

	viper.SetDefault("baud", 115200)
	viper.SetDefault("timeout", "10s")
}

// initConfig reads in the config file and matching environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warn("could not find home directory, skipping config file", "error", err)
			return
		}

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".elenawatch")
	}

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "file", viper.ConfigFileUsed())
	}
}
