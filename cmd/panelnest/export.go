package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/panelnest/internal/export"
	"github.com/piwi3910/panelnest/internal/project"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <output file>",
	Short: "Export the stored nesting result (pdf, labels, or xlsx)",
	Long:  "The output format follows the file extension: .pdf for sheet diagrams, .xlsx for a workbook. Use --labels to emit a QR label sheet PDF instead of diagrams.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().Bool("labels", false, "emit QR part labels instead of sheet diagrams")
}

func runExport(cmd *cobra.Command, args []string) error {
	path, _ := rootCmd.PersistentFlags().GetString("project")
	proj, err := project.Load(path)
	if err != nil {
		return fmt.Errorf("load project: %w", err)
	}
	if proj.Result == nil {
		return fmt.Errorf("project has no stored nesting result, run 'panelnest nest' first")
	}

	out := args[0]
	labels, _ := cmd.Flags().GetBool("labels")

	switch ext := strings.ToLower(filepath.Ext(out)); {
	case labels && ext == ".pdf":
		err = export.ExportLabels(out, proj.Result)
	case ext == ".pdf":
		err = export.ExportPDF(out, proj.Result, proj.Config)
	case ext == ".xlsx":
		err = export.ExportExcel(out, proj.Result)
	default:
		return fmt.Errorf("unsupported output format %q (use .pdf or .xlsx)", ext)
	}
	if err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", out)
	return nil
}
