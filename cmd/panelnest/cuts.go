package main

import (
	"fmt"

	"github.com/piwi3910/panelnest/internal/cutplan"
	"github.com/piwi3910/panelnest/internal/project"
	"github.com/spf13/cobra"
)

var cutsCmd = &cobra.Command{
	Use:   "cuts",
	Short: "Print the cut sequence of the stored nesting result",
	RunE:  runCuts,
}

func init() {
	rootCmd.AddCommand(cutsCmd)
}

func runCuts(cmd *cobra.Command, args []string) error {
	path, _ := rootCmd.PersistentFlags().GetString("project")
	proj, err := project.Load(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if proj.Result == nil {
		return fmt.Errorf("project has no stored nesting result, run 'panelnest nest' first")
	}

	for _, sheet := range proj.Result.Sheets {
		fmt.Print(cutplan.RenderSheet(sheet, proj.Result.Cuts))
	}
	fmt.Printf("Total: %d cuts, estimated %.1f min\n",
		len(proj.Result.Cuts), proj.Result.EstimatedCutTimeMinutes)
	return nil
}
