package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/printforge/meshengine/internal/engine"
	"github.com/printforge/meshengine/internal/logger"
	"github.com/printforge/meshengine/internal/watcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a drop folder and analyze changed STL files",
	Long: `Monitor a directory and re-run the analysis pipeline whenever an STL file
is created or modified. Uploads in progress are debounced so each file is
analyzed once, after its last write.`,
	Args: cobra.ExactArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a changed file is analyzed")
}

func runWatch(cmd *cobra.Command, args []string) {
	dir := args[0]

	fw, err := watcher.NewFolderWatcher(watchDebounce)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating watcher: %v\n", err)
		os.Exit(1)
	}
	defer fw.Close()

	eng := engine.New(cfg)
	cache := engine.NewMemoryCache()

	err = fw.Watch(dir, func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Log.Warn("failed to read changed file",
				zap.String("path", path), zap.Error(err))
			return
		}
		sizeMB := float64(len(data)) / (1024 * 1024)

		// A change event means the file was replaced; the old entry
		// is no longer authoritative.
		cache.Delete(path)
		result := eng.AnalyzeCached(cache, path, data, sizeMB)
		name := filepath.Base(path)
		if result.Estimate == nil {
			fmt.Printf("%-30s %s\n", name, result.Status)
			return
		}
		fmt.Printf("%-30s %-14s %7.1f g  %8.2f  %s\n",
			name, result.Status,
			result.Estimate.WeightGrams,
			result.Estimate.PriceWithTax,
			result.Estimate.PrintTimeLabel)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error watching directory: %v\n", err)
		os.Exit(1)
	}

	fw.Start()
	fmt.Printf("Watching %s for STL changes (Ctrl-C to stop)\n", dir)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
