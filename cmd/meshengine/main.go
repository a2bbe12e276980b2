package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/printforge/meshengine/internal/config"
	"github.com/printforge/meshengine/internal/logger"
	"github.com/printforge/meshengine/version"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "meshengine",
	Short: "STL geometry analysis and print-quote engine",
	Long: `meshengine analyzes STL (Stereolithography) mesh files for a 3D-printing
workflow: it decodes ASCII and binary STL, measures bounding box and volume,
derives weight, price and print-time estimates, and searches print
orientations that minimize support material.`,
	Version: version.GetFullVersion(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
