package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docfill/docfill"
)

func newBatchCmd() *cobra.Command {
	var (
		outDir    string
		recursive bool
		keepNames bool
		toPDF     bool
	)

	cmd := &cobra.Command{
		Use:          "batch <config> <templates-dir>",
		Short:        "Fill every DOCX template in a directory against one config",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
			configPath, inputDir := args[0], args[1]

			if outDir == "" {
				outDir = inputDir
			}
			if keepNames && filepath.Clean(outDir) == filepath.Clean(inputDir) {
				return fmt.Errorf("refusing to overwrite templates in place, pass --outdir with --keep-names")
			}

			green := color.New(color.FgGreen).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			var found int
			progress := func(ev docfill.BatchEvent) {
				name := filepath.Base(ev.Template)

				if !ev.Done {
					if ev.Index == 1 {
						found = ev.Total
						fmt.Printf("Found %d DOCX file(s) to process\n", ev.Total)
					}
					fmt.Printf("[%d/%d] Processing: %s\n", ev.Index, ev.Total, name)
					if verbose {
						fmt.Printf("  Input:  %s\n", ev.Template)
						fmt.Printf("  Output: %s\n", ev.Output)
					}
					return
				}

				if ev.Err != nil {
					fmt.Printf("[%d/%d] %s Failed: %s\n", ev.Index, ev.Total, red("✗"), name)
					fmt.Printf("  Error: %s\n", ev.Err)
					return
				}
				fmt.Printf("[%d/%d] %s Completed: %s\n", ev.Index, ev.Total, green("✓"), name)
			}

			outputs, err := docfill.ProcessDirectory(inputDir, configPath, outDir, docfill.BatchOptions{
				Recursive: recursive,
				KeepNames: keepNames,
				Progress:  progress,
			})
			if err != nil {
				return err
			}
			if found == 0 {
				fmt.Println("No DOCX files found to process.")
				return nil
			}
			if len(outputs) == 0 {
				return fmt.Errorf("no files processed successfully")
			}

			if toPDF {
				conv := docfill.NewPDFConverter(false)
				for _, out := range outputs {
					pdfPath, err := conv.Convert(cmd.Context(), out, "")
					if err != nil {
						fmt.Printf("%s PDF failed: %s\n", red("✗"), err)
						continue
					}
					fmt.Printf("PDF created: %s\n", pdfPath)
				}
			}

			if verbose {
				fmt.Printf("Completed processing %d file(s)\n", len(outputs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "outdir", "", "Output directory (default: the templates directory)")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Also process templates in subdirectories")
	cmd.Flags().BoolVar(&keepNames, "keep-names", false, `Keep template filenames, no "_filled" suffix`)
	cmd.Flags().BoolVar(&toPDF, "pdf", false, "Also convert filled documents to PDF")

	return cmd
}
