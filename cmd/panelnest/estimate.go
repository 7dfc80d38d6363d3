package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/piwi3910/panelnest/internal/cutplan"
	"github.com/piwi3910/panelnest/internal/engine"
	"github.com/piwi3910/panelnest/internal/project"
	"github.com/spf13/cobra"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate sheet material needs without nesting",
	RunE:  runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	estimateCmd.Flags().Bool("save", false, "store the estimate in the project file")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	path, _ := rootCmd.PersistentFlags().GetString("project")
	proj, err := project.Load(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	cfg := resolveConfig(cmd, proj.Config)
	runner := engine.New(cfg, cutplan.DefaultTimeConfig())
	result, err := runner.RunEstimation(context.Background(), proj.Parts, proj.RequiredQty, proj.Palette)
	if err != nil {
		return err
	}

	fmt.Printf("Estimate for %s (%d parts, target yield %.0f%%)\n\n", proj.Name, result.TotalParts, cfg.TargetYieldPercent)

	keys := make([]string, 0, len(result.Materials))
	for k := range result.Materials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m := result.Materials[k]
		fmt.Printf("  %-20s %3d sheets  (%d units, %.1f%% est. waste, %.2f cost)\n",
			m.MaterialKey, m.SheetsRequired, m.Units, m.WasteEstimatePercent, m.MaterialCost)
	}

	fmt.Printf("\nTotal: %d sheets, %.1f%% estimated waste, material cost %.2f\n",
		result.SheetsRequired, result.WasteEstimatePercent, result.MaterialCost)

	for _, ge := range result.GroupErrors {
		fmt.Printf("warning: %s [%s]: %s\n", ge.MaterialKey, ge.Kind, ge.Message)
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		proj.Estimation = result
		if err := project.Save(path, proj); err != nil {
			return fmt.Errorf("save project: %w", err)
		}
	}
	return nil
}
