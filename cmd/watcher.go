package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// StartConfigWatcher starts a background file watcher that re-applies the
// config file when it changes, so a running TUI picks up a new server URL or
// download directory without a restart. Returns a stop function.
func StartConfigWatcher(onReload func(*Config)) (func(), error) {
	cwd := getEffectiveCWD()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	watched := map[string]bool{}
	for _, path := range configFilePaths(cwd) {
		dir := filepath.Dir(path)
		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logDebug(fmt.Sprintf("config watcher: cannot watch %s: %v", dir, err))
			continue
		}
		watched[dir] = true
	}
	if len(watched) == 0 {
		watcher.Close()
		return nil, fmt.Errorf("no config directories available to watch")
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(event.Name)
				if name != configFileName && name != "config.toml" {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				logDebug("config watcher: reloading after " + strings.ToLower(event.Op.String()) + " on " + event.Name)
				cfg := loadConfig(cwd)
				applyConfig(cfg)
				if onReload != nil {
					onReload(cfg)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logDebug(fmt.Sprintf("config watcher error: %v", err))
			}
		}
	}()

	return func() { watcher.Close() }, nil
}
