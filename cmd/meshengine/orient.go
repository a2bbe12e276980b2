package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/printforge/meshengine/pkg/orient"
	"github.com/printforge/meshengine/pkg/stl"
)

var orientAll bool

var orientCmd = &cobra.Command{
	Use:   "orient [file]",
	Short: "Find the print orientation needing the least support",
	Long: `Search quarter-turn rotations around the X and Z axes for the orientation
with the flattest, broadest footprint that still fits the configured build
envelope. The 8-point grid is a fast approximation, not a global optimum.`,
	Args: cobra.ExactArgs(1),
	Run:  runOrient,
}

func init() {
	rootCmd.AddCommand(orientCmd)
	orientCmd.Flags().BoolVarP(&orientAll, "all", "a", false, "Show every candidate, not just the best")
}

func runOrient(cmd *cobra.Command, args []string) {
	filename := args[0]

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	soup, err := stl.Decode(data, cfg.Decoder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding STL file: %v\n", err)
		os.Exit(1)
	}

	env := cfg.Printer.Envelope
	fmt.Println("Orientation Search")
	fmt.Println("==================")
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Build Envelope: %.0f x %.0f x %.0f mm (%s)\n\n",
		env.X, env.Y, env.Z, cfg.Printer.Name)

	if orientAll {
		fmt.Println("Candidates:")
		for _, c := range orient.Candidates(soup, env) {
			printCandidate("  ", c)
		}
		fmt.Println()
	}

	best := orient.FindOptimalRotation(soup, env)
	fmt.Println("Best Orientation:")
	printCandidate("  ", best)
	if !best.Fits {
		fmt.Println("  Warning: model does not fit the build envelope in any searched orientation")
	}
}

func printCandidate(indent string, c orient.Candidate) {
	size := c.Bounds.Size()
	fit := "fits"
	if !c.Fits {
		fit = "does not fit"
	}
	fmt.Printf("%sX %3.0f°  Z %2.0f°  ->  %.1f x %.1f x %.1f mm  score %.3f  (%s)\n",
		indent, c.XDeg, c.ZDeg, size.X, size.Y, size.Z, c.Score, fit)
}
