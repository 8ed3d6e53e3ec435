package docfill

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// BatchEvent - one progress step of a directory run.
// Emitted before a file starts and again when it's done
type BatchEvent struct {
	Index    int // 1 based
	Total    int
	Template string
	Output   string
	Done     bool
	Err      error // set on the done event of a failed file
}

// BatchOptions ..
type BatchOptions struct {
	Recursive bool
	KeepNames bool // keep template filenames, no _filled suffix
	Progress  func(BatchEvent)
}

// Fill - open, render and export one template in a single call
func Fill(templatePath string, values Values, outputPath string) error {
	tpl, err := OpenTemplate(templatePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := tpl.Close(); err != nil {
			log.Printf("close template: %s", err)
		}
	}()

	if err := tpl.Render(values); err != nil {
		return err
	}
	return tpl.ExportDocx(outputPath)
}

// ProcessDirectory - fill every template in dir against one config.
// A failed file is reported through progress and skipped, the run
// continues. Returns paths of written outputs
func ProcessDirectory(inputDir, configPath, outputDir string, opts BatchOptions) ([]string, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", inputDir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", inputDir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, err
	}

	values, err := LoadValues(configPath)
	if err != nil {
		return nil, err
	}

	files, err := findTemplates(inputDir, opts.Recursive)
	if err != nil {
		return nil, err
	}

	var outputs []string
	for i, tplPath := range files {
		ev := BatchEvent{
			Index:    i + 1,
			Total:    len(files),
			Template: tplPath,
			Output:   filepath.Join(outputDir, outputName(tplPath, opts.KeepNames)),
		}
		emitBatch(opts.Progress, ev)

		ev.Err = Fill(tplPath, values, ev.Output)
		ev.Done = true
		emitBatch(opts.Progress, ev)

		if ev.Err == nil {
			outputs = append(outputs, ev.Output)
		}
	}
	return outputs, nil
}

func outputName(tplPath string, keepName bool) string {
	name := filepath.Base(tplPath)
	if keepName {
		return name
	}
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_filled" + ext
}

// Templates of one directory sorted by name, recursive adds the
// subdirectory finds after the root ones
func findTemplates(dir string, recursive bool) ([]string, error) {
	files, err := listTemplates(dir)
	if err != nil {
		return nil, err
	}
	if !recursive {
		return files, nil
	}

	var subdirs []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != dir {
			subdirs = append(subdirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(subdirs)

	for _, sub := range subdirs {
		more, err := listTemplates(sub)
		if err != nil {
			return nil, err
		}
		files = append(files, more...)
	}
	return files, nil
}

func listTemplates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !isTemplateName(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Word leaves owner files (~$) and auto backups (~WRL) around, those
// and already filled outputs must not be processed
func isTemplateName(name string) bool {
	if !strings.HasSuffix(name, ".docx") {
		return false
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "~$"),
		strings.HasPrefix(name, "~WRL"),
		strings.HasPrefix(name, "."):
		return false
	case strings.Contains(lower, "temp"), strings.Contains(lower, "tmp"):
		return false
	case strings.HasSuffix(name, "_filled.docx"):
		return false
	}
	return true
}

func emitBatch(fn func(BatchEvent), ev BatchEvent) {
	if fn != nil {
		fn(ev)
	}
}
