package commands

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/baconql/internal/loader"
)

// DefaultDebounce is how long watch waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Re-check SQL files whenever they change",
		Long: `Check the given files or directories, then keep watching them and
re-check after every change. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", DefaultDebounce, "Quiet period before re-checking")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	ctx := cmd.Context()
	c := NewCommandContext(cmd)

	paths, err := c.Paths(args)
	if err != nil {
		return err
	}
	l := c.Loader()

	recheck := func() {
		report, err := check(ctx, l, paths)
		if err != nil {
			c.Renderer.Error(err.Error())
			return
		}
		if err := renderCheck(c.Renderer, report); err != nil {
			c.Logger.Error("failed to render report", "error", err)
		}
	}

	recheck()
	c.Renderer.Muted("Watching for changes, press Ctrl+C to stop")

	return watchPaths(ctx, c.Logger, paths, opts.Debounce, func(changed []string) {
		c.Logger.Info("change detected", "files", changed)
		recheck()
	})
}

// watchPaths calls onChange with the changed .sql files after each burst of
// writes settles for debounce. Directories are watched recursively, and
// directories created later are added. It returns when ctx is done.
func watchPaths(ctx context.Context, logger *slog.Logger, paths []string, debounce time.Duration, onChange func(changed []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Explicit files are watched through their directory.
	files := make(map[string]bool)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files[filepath.Clean(p)] = true
			if err := watcher.Add(filepath.Dir(p)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", p, err)
			}
			continue
		}
		if err := watchDir(watcher, p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
	}

	relevant := func(name string) bool {
		if files[filepath.Clean(name)] {
			return true
		}
		if filepath.Ext(name) != loader.Extension {
			return false
		}
		for _, p := range paths {
			if !files[filepath.Clean(p)] && withinDir(name, p) {
				return true
			}
		}
		return false
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = make(map[string]bool)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchDir(watcher, event.Name); err != nil {
						logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !relevant(event.Name) {
				continue
			}
			logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			slices.Sort(changed)
			clear(pending)
			onChange(changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// watchDir adds dir and its non-hidden subdirectories to watcher.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func withinDir(name, dir string) bool {
	rel, err := filepath.Rel(dir, name)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
