package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"workable/infrastructure/config"
	"workable/infrastructure/di"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "workable",
	Short: "Workable is a convertible work-unit hierarchy engine",
	Long: `Workable models work as units that convert between an atomic mode,
carrying an inline payload, and a composite mode, composing other units
through ordered frames. Commands seed an in-memory registry and let you
walk, render and measure it.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// buildContainer loads configuration and wires the dependency graph
func buildContainer() (*di.Container, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return di.NewContainer(cfg)
}

// exitOn aborts the command on a failed step
func exitOn(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
