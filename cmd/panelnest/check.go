package main

import (
	"fmt"

	"github.com/piwi3910/panelnest/internal/project"
	"github.com/piwi3910/panelnest/internal/staleness"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the stored nesting result is still current",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("mark", false, "record the stale state in the project file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, _ := rootCmd.PersistentFlags().GetString("project")
	proj, err := project.Load(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if proj.Result == nil {
		return fmt.Errorf("project has no stored nesting result, run 'panelnest nest' first")
	}

	state := staleness.Check(proj.Result, proj.Parts, proj.RequiredQty, proj.Palette, proj.Config)
	if !state.Stale() {
		fmt.Println("result is current")
		return nil
	}

	fmt.Println("result is STALE:")
	for _, reason := range state.Reasons {
		fmt.Printf("  - %s\n", reason)
	}

	if mark, _ := cmd.Flags().GetBool("mark"); mark {
		proj.Staleness = state
		if err := project.Save(path, proj); err != nil {
			return fmt.Errorf("save project: %w", err)
		}
	}
	return nil
}
