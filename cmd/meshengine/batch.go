package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/printforge/meshengine/internal/engine"
	"github.com/printforge/meshengine/internal/fetch"
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Analyze pending STL files in a directory",
	Long: `Process STL files from a directory one at a time, with a pacing delay
between files and a per-run cap, the way the dashboard drains its upload
backlog. Re-run the command to continue where the cap stopped.`,
	Args: cobra.ExactArgs(1),
	Run:  runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) {
	dir := args[0]

	pending, err := listSTLFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing directory: %v\n", err)
		os.Exit(1)
	}
	if len(pending) == 0 {
		fmt.Println("No STL files found.")
		return
	}

	runner := fetch.NewRunner(
		engine.New(cfg),
		engine.NewMemoryCache(),
		fetch.NewGate(),
		cfg.Batch,
	)

	outcomes := runner.Process(cmd.Context(), pending, readLocalFile)

	fmt.Printf("Processed %d of %d pending files:\n\n", len(outcomes), len(pending))
	for _, o := range outcomes {
		name := filepath.Base(o.Key)
		if o.Err != nil {
			fmt.Printf("  %-30s error: %v\n", name, o.Err)
			continue
		}
		e := o.Result.Estimate
		if e == nil {
			fmt.Printf("  %-30s %s\n", name, o.Result.Status)
			continue
		}
		fmt.Printf("  %-30s %-14s %7.1f g  %8.2f  %s\n",
			name, o.Result.Status, e.WeightGrams, e.PriceWithTax, e.PrintTimeLabel)
	}
}

// readLocalFile is the FetchFunc for directory batches: plain disk
// reads stand in for the dashboard's remote transport
func readLocalFile(ctx context.Context, key string) ([]byte, float64, error) {
	data, err := os.ReadFile(key)
	if err != nil {
		return nil, 0, err
	}
	return data, float64(len(data)) / (1024 * 1024), nil
}

func listSTLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".stl") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
