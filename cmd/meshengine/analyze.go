package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/printforge/meshengine/internal/engine"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze an STL file and quote its manufacture",
	Long: `Decode an STL file, measure its geometry and derive weight, price and
print-time estimates. Files that cannot be decoded fall back to a rough
file-size estimate instead of failing.`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	sizeMB := float64(len(data)) / (1024 * 1024)

	result := engine.New(cfg).Analyze(data, sizeMB)

	fmt.Println("Mesh Analysis")
	fmt.Println("=============")
	fmt.Printf("File: %s (%.2f MB)\n", filename, sizeMB)
	fmt.Printf("Status: %s\n\n", result.Status)

	if result.Metrics != nil {
		m := result.Metrics
		dims := m.Dimensions()

		fmt.Println("Geometry:")
		fmt.Printf("  Format: %s\n", result.Soup.Format)
		fmt.Printf("  Triangles: %d", m.TriangleCount)
		if result.Soup.Truncated() {
			fmt.Printf(" (sampled of %d claimed)", result.Soup.ClaimedCount)
		}
		fmt.Println()
		fmt.Printf("  Dimensions: %.2f x %.2f x %.2f mm\n", dims.X, dims.Y, dims.Z)
		fmt.Printf("  Surface Area: %.2f mm²\n", m.SurfaceArea)
		fmt.Printf("  Volume: %.2f cm³", m.VolumeCm3)
		if m.Degraded {
			fmt.Print(" (approximate)")
		}
		fmt.Println()
		fmt.Println()
	}

	if result.Estimate == nil {
		fmt.Println("No estimate could be produced for this input.")
		os.Exit(1)
	}

	e := result.Estimate
	fmt.Println("Estimate:")
	fmt.Printf("  Weight: %.1f g\n", e.WeightGrams)
	fmt.Printf("  Price: %.2f (%.2f incl. tax)\n", e.PriceBeforeTax, e.PriceWithTax)
	fmt.Printf("  Print Time: %s (%.2f h)\n", e.PrintTimeLabel, e.PrintTimeHours)
	if e.IsEstimate {
		fmt.Println("  Note: values are approximate")
	}
}
