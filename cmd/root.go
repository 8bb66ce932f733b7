// Package cmd provides the slicebom command-line interface.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --log-level) - highest priority
//	2. SLICEBOM_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (SLICEBOM_SLICER_COMMAND, etc.)
//	4. Configuration files (.slicebom.yml) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mkamal/slicebom/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slicebom",
	Short: "3D printing manufacturing pipeline: STEP export, slicing metrics, BOM reports",
	Long: `slicebom automates the path from CAD part files to a priced bill of
materials for 3D printing.

Pipeline Stages:
  • export    Export a CAD part marked for printing as a STEP file
  • slice     Run the slicer twice to measure part and support material
  • bom       Aggregate per-part metrics into CSV and PDF reports

Quick Start:
  slicebom init                   Scaffold .slicebom.yml and a slicer profile
  slicebom export part.ipt        Export geometry for a printable part
  slicebom slice part.step        Extract weight, time, and size metrics
  slicebom bom Slicer_Stats/      Build the bill of materials
  slicebom watch parts/           Re-slice and rebuild the BOM on changes`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .slicebom.yml, can also use SLICEBOM_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. SLICEBOM_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .slicebom.yml in current directory
//
// Environment variables with the SLICEBOM_ prefix override file values,
// e.g. SLICEBOM_SLICER_COMMAND=prusa-slicer-console.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SLICEBOM_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".slicebom")
	}

	viper.SetEnvPrefix("SLICEBOM")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing or malformed config files fall back to defaults without failing.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger honoring the --log-level flag.
func newLogger() *logging.PipelineLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Output: os.Stderr,
	})
}
