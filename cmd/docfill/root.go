package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docfill/docfill"
)

func newRootCmd() *cobra.Command {
	var (
		output            string
		verbose           bool
		toPDF             bool
		checkPlaceholders bool
	)

	cmd := &cobra.Command{
		Use:   "docfill <config> <template.docx>",
		Short: "Fill DOCX templates with data from configuration files",
		Example: `  docfill config.yaml template.docx -o output.docx
  docfill config.json template.docx
  docfill config.ini template.docx --check-placeholders`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)
			configPath, templatePath := args[0], args[1]

			slog.Debug("loading config", "path", configPath)
			values, err := docfill.LoadValues(configPath)
			if err != nil {
				return err
			}
			slog.Debug("config loaded", "items", len(values.Flatten()))

			slog.Debug("loading template", "path", templatePath)
			tpl, err := openTemplate(templatePath)
			if err != nil {
				return err
			}
			defer func() {
				if err := tpl.Close(); err != nil {
					slog.Debug("close template", "err", err)
				}
			}()

			res, err := tpl.Check(values)
			if err != nil {
				return err
			}

			if checkPlaceholders {
				printCheckReport(res)
				return nil
			}

			// Unmatched references render empty, tell the user up front
			for _, p := range res.Missing {
				color.Yellow("Warning: No replacement found for placeholder: %s", p)
			}

			outPath := output
			if outPath == "" {
				outPath = defaultOutput(templatePath)
			}

			slog.Debug("rendering template", "output", outPath)
			if err := tpl.Render(values); err != nil {
				return err
			}
			if err := tpl.ExportDocx(outPath); err != nil {
				return err
			}

			fmt.Printf("Template filled successfully: %s\n", outPath)
			if verbose {
				matched := len(res.Placeholders) - len(res.Missing)
				fmt.Printf("Placeholders processed: %d/%d\n", matched, len(res.Placeholders))
			}

			if toPDF {
				conv := docfill.NewPDFConverter(false)
				slog.Debug("converting to pdf", "method", conv.Method())

				pdfPath, err := conv.Convert(cmd.Context(), outPath, "")
				if err != nil {
					return err
				}
				fmt.Printf("PDF created: %s\n", pdfPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file path (default: adds "_filled" to template name)`)
	cmd.Flags().BoolVar(&toPDF, "pdf", false, "Also convert the filled document to PDF")
	cmd.Flags().BoolVar(&checkPlaceholders, "check-placeholders", false, "Show all placeholders found in template and available config keys")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	return cmd
}

func openTemplate(templatePath string) (*docfill.Template, error) {
	if isURL(templatePath) {
		return docfill.OpenTemplateWithURL(templatePath)
	}
	if _, err := os.Stat(templatePath); err != nil {
		return nil, fmt.Errorf("template file not found: %s", templatePath)
	}
	return docfill.OpenTemplate(templatePath)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Default: add "_filled" before the extension, url templates land in
// the working dir
func defaultOutput(templatePath string) string {
	if isURL(templatePath) {
		if u, err := url.Parse(templatePath); err == nil {
			if base := path.Base(u.Path); strings.HasSuffix(base, ".docx") {
				ext := path.Ext(base)
				return strings.TrimSuffix(base, ext) + "_filled" + ext
			}
		}
		return "template_filled.docx"
	}

	ext := filepath.Ext(templatePath)
	return strings.TrimSuffix(templatePath, ext) + "_filled" + ext
}

func printCheckReport(res *docfill.CheckResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	missing := map[string]bool{}
	for _, p := range res.Missing {
		missing[p] = true
	}
	unused := map[string]bool{}
	for _, k := range res.Unused {
		unused[k] = true
	}

	fmt.Printf("\nTemplate placeholders found (%d):\n", len(res.Placeholders))
	for _, p := range res.Placeholders {
		mark := green("✓")
		if missing[p] {
			mark = red("✗")
		}
		fmt.Printf("  %s {{%s}}\n", mark, p)
	}

	keys := make([]string, 0, len(res.Keys))
	for k := range res.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\nConfiguration keys available (%d):\n", len(keys))
	for _, k := range keys {
		mark := green("✓")
		if unused[k] {
			mark = red("✗")
		}
		fmt.Printf("  %s %s = %s\n", mark, k, preview(res.Keys[k]))
	}

	if len(res.Missing) > 0 {
		fmt.Printf("\nMissing config values for placeholders (%d):\n", len(res.Missing))
		for _, p := range res.Missing {
			fmt.Printf("  %s %s\n", red("✗"), p)
		}
	}

	if len(res.Unused) > 0 {
		fmt.Printf("\nUnused config values (%d):\n", len(res.Unused))
		for _, k := range res.Unused {
			fmt.Printf("  %s %s\n", red("✗"), k)
		}
	}
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		return string(runes[:50]) + "..."
	}
	return s
}
