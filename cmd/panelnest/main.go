// Command panelnest is the CLI for the panel nesting and
// cut-optimization engine: estimate material needs, generate production
// layouts, inspect cut sequences, and export results.
package main

import (
	"fmt"
	"os"

	"github.com/piwi3910/panelnest/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "panelnest",
	Short: "Panel nesting and cut optimization",
	Long:  "PanelNest estimates sheet material needs and generates deterministic guillotine cutting layouts for rectangular panel parts.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .panelnest.yaml)")
	rootCmd.PersistentFlags().StringP("project", "p", "project.json", "project file")
	rootCmd.PersistentFlags().Float64("kerf", 0, "blade kerf in mm (overrides project config)")
	rootCmd.PersistentFlags().Float64("target-yield", 0, "target yield percent (overrides project config)")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".panelnest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PANELNEST")
	viper.AutomaticEnv()

	// No config file is fine; project and flag values apply.
	_ = viper.ReadInConfig()
}

// resolveConfig layers flag and config-file overrides on top of the
// project's stored optimization config.
func resolveConfig(cmd *cobra.Command, base model.OptimizationConfig) model.OptimizationConfig {
	cfg := base
	if viper.IsSet("kerf") {
		cfg.Kerf = viper.GetFloat64("kerf")
	}
	if viper.IsSet("target_yield") {
		cfg.TargetYieldPercent = viper.GetFloat64("target_yield")
	}
	if v, _ := cmd.Flags().GetFloat64("kerf"); v > 0 {
		cfg.Kerf = v
	}
	if v, _ := cmd.Flags().GetFloat64("target-yield"); v > 0 {
		cfg.TargetYieldPercent = v
	}
	return cfg
}
