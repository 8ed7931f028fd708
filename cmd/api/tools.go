package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mindscape-go/internal/catalog"
	"mindscape-go/internal/distress"
	"mindscape-go/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio-file>",
	Short: "Run the analysis pipeline on a local recording and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		// keep stdout for the JSON result
		log.Logger.SetOutput(cmd.ErrOrStderr())

		a, err := buildApp(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := a.processor.AnalyzeAudio(cmd.Context(), filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var classifyScore float64

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Print the distress level for a sentiment score",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), distress.FromScore(classifyScore))
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Load the resource catalog and print it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		log.Logger.SetOutput(cmd.ErrOrStderr())

		c := catalog.Load(cfg.Catalog.Path, log.Component("catalog"))
		out := map[catalog.Category][]types.Resource{}
		for _, cat := range catalog.Categories {
			out[cat] = c.Get(cat)
		}
		return printJSON(cmd, out)
	},
}

func init() {
	classifyCmd.Flags().Float64Var(&classifyScore, "score", 0, "sentiment valence in [-1, 1]")
	_ = classifyCmd.MarkFlagRequired("score")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
