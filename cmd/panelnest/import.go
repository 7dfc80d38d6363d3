package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/panelnest/internal/importer"
	"github.com/piwi3910/panelnest/internal/project"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <part list file>",
	Short: "Import parts from a CSV, Excel, or DXF file into the project",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("material", "", "material key assigned to imported parts without one")
}

func runImport(cmd *cobra.Command, args []string) error {
	path, _ := rootCmd.PersistentFlags().GetString("project")
	proj, err := project.Load(path)
	if err != nil {
		// A missing project file starts a fresh project.
		proj = project.New(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	}

	in := args[0]
	var result importer.ImportResult
	switch strings.ToLower(filepath.Ext(in)) {
	case ".csv", ".txt":
		result = importer.ImportCSV(in)
	case ".xlsx":
		result = importer.ImportExcel(in)
	case ".dxf":
		result = importer.ImportDXF(in)
	default:
		return fmt.Errorf("unsupported input format %q (use .csv, .xlsx, or .dxf)", filepath.Ext(in))
	}

	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %s\n", e)
	}
	if len(result.Parts) == 0 {
		return fmt.Errorf("no parts imported from %s", in)
	}

	material, _ := cmd.Flags().GetString("material")
	for i := range result.Parts {
		if result.Parts[i].MaterialKey == "" {
			result.Parts[i].MaterialKey = material
		}
	}

	proj.Parts = append(proj.Parts, result.Parts...)
	if err := project.Save(path, proj); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	fmt.Printf("imported %d parts into %s\n", len(result.Parts), path)
	return nil
}
