package main

import (
	"context"
	"fmt"
	"time"

	"github.com/piwi3910/panelnest/internal/cutplan"
	"github.com/piwi3910/panelnest/internal/engine"
	"github.com/piwi3910/panelnest/internal/model"
	"github.com/piwi3910/panelnest/internal/project"
	"github.com/spf13/cobra"
)

var nestCmd = &cobra.Command{
	Use:   "nest",
	Short: "Generate a production nesting layout",
	RunE:  runNest,
}

func init() {
	rootCmd.AddCommand(nestCmd)
	nestCmd.Flags().Duration("timeout", 0, "abort nesting after this duration (0 = no limit)")
	nestCmd.Flags().Bool("compare", false, "also run what-if scenarios and show a comparison")
}

func runNest(cmd *cobra.Command, args []string) error {
	path, _ := rootCmd.PersistentFlags().GetString("project")
	proj, err := project.Load(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}

	cfg := resolveConfig(cmd, proj.Config)
	runner := engine.New(cfg, cutplan.DefaultTimeConfig())

	ctx := context.Background()
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := runner.RunProduction(ctx, proj.Parts, proj.RequiredQty, proj.Palette)
	if err != nil {
		return err
	}

	fmt.Printf("Nested %d parts onto %d sheets in %s\n",
		result.PlacementCount(), len(result.Sheets), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Yield: %.1f%% (target %.0f%%, met: %t)\n",
		result.OptimizedYield, result.TargetYieldPercent, result.MeetsTarget)
	fmt.Printf("Cuts: %d, estimated time %.1f min, offcuts: %d\n",
		len(result.Cuts), result.EstimatedCutTimeMinutes, len(result.Offcuts))
	if result.BestEffort {
		fmt.Println("note: run budget exceeded, result is best effort")
	}
	for _, ge := range result.GroupErrors {
		fmt.Printf("warning: %s [%s]: %s\n", ge.MaterialKey, ge.Kind, ge.Message)
	}

	if compare, _ := cmd.Flags().GetBool("compare"); compare {
		printComparison(ctx, cfg, proj)
	}

	proj.Result = result
	proj.Config = cfg
	proj.Staleness = model.InvalidationState{}
	if err := project.Save(path, proj); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func printComparison(ctx context.Context, cfg model.OptimizationConfig, proj *project.Project) {
	scenarios := engine.BuildDefaultScenarios(cfg)
	results := engine.CompareScenarios(ctx, scenarios, proj.Parts, proj.RequiredQty, proj.Palette, cutplan.DefaultTimeConfig())

	fmt.Println("\nScenario comparison:")
	for _, cr := range results {
		if cr.Err != nil {
			fmt.Printf("  %-24s failed: %v\n", cr.Scenario.Name, cr.Err)
			continue
		}
		fmt.Printf("  %-24s %2d sheets  %.1f%% waste  %3d cuts  %d failed groups\n",
			cr.Scenario.Name, cr.SheetsUsed, cr.WastePercent, cr.TotalCuts, cr.FailedGroups)
	}
}
