package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docfill/docfill"
)

func newWatchCmd() *cobra.Command {
	var (
		outPath string
		toPDF   bool
	)

	cmd := &cobra.Command{
		Use:          "watch <config> <template.docx>",
		Short:        "Rerender the template whenever it or the config changes",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			setupLogging(verbose)
			configPath, tplPath := args[0], args[1]

			if _, err := os.Stat(tplPath); err != nil {
				return fmt.Errorf("template file not found: %s", tplPath)
			}
			if outPath == "" {
				outPath = defaultOutput(tplPath)
			}

			green := color.New(color.FgGreen).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			var conv *docfill.PDFConverter
			if toPDF {
				conv = docfill.NewPDFConverter(false)
			}

			fmt.Printf("Watching %s and %s (Ctrl+C to stop)\n", tplPath, configPath)

			opts := docfill.WatchOptions{
				OnRender: func(ev docfill.WatchEvent) {
					stamp := time.Now().Format("15:04:05")
					if ev.Err != nil {
						fmt.Printf("[%s] %s %s\n", stamp, red("✗"), ev.Err)
						return
					}
					fmt.Printf("[%s] %s %s\n", stamp, green("✓"), ev.Output)
					if conv != nil {
						pdfPath, err := conv.Convert(cmd.Context(), ev.Output, "")
						if err != nil {
							fmt.Printf("[%s] %s PDF failed: %s\n", stamp, red("✗"), err)
							return
						}
						fmt.Printf("[%s] %s %s\n", stamp, green("✓"), pdfPath)
					}
				},
			}
			return docfill.Watch(cmd.Context(), tplPath, configPath, outPath, opts)
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "", `Output path (default: template name with "_filled")`)
	cmd.Flags().BoolVar(&toPDF, "pdf", false, "Also convert to PDF after each render")

	return cmd
}
