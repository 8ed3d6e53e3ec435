package docfill

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchEvent - result of one render triggered by a file change
type WatchEvent struct {
	Changed string // path that triggered the render
	Output  string
	Err     error
}

// WatchOptions ..
type WatchOptions struct {
	// Debounce collapses editor save bursts into one render,
	// zero means 300ms
	Debounce time.Duration
	OnRender func(WatchEvent)
}

// Watch template and config files, rerender to outputPath on every
// change until ctx is done. First render happens right away and a
// failed render reports through OnRender and keeps watching
func Watch(ctx context.Context, templatePath, configPath, outputPath string, opts WatchOptions) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			log.Printf("close watcher: %s", err)
		}
	}()

	// Watch dirs not files. Editors replace the file on save and a
	// watch on the old inode would go quiet
	dirs := map[string]bool{}
	for _, p := range []string{templatePath, configPath} {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	watched := map[string]bool{
		filepath.Clean(templatePath): true,
		filepath.Clean(configPath):   true,
	}

	render := func(changed string) {
		ev := WatchEvent{Changed: changed, Output: outputPath}

		values, err := LoadValues(configPath)
		if err != nil {
			ev.Err = err
		} else {
			ev.Err = Fill(templatePath, values, outputPath)
		}

		if opts.OnRender != nil {
			opts.OnRender(ev)
		}
	}

	render(templatePath)

	var pending string
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			pending = event.Name
			timerC = time.After(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %s", err)

		case <-timerC:
			timerC = nil
			render(pending)
		}
	}
}
