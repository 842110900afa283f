package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file at path whenever it changes on disk and
// passes the new configuration to fn. A file that fails to load is logged
// and skipped. The directory is watched rather than the file so editors
// that replace the file on save are still seen. Call the returned function
// to stop watching.
func Watch(path string, fn func(*EvalConf)) (func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: starting watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("config: watching %s: %w", path, err)
	}
	name := filepath.Base(path)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Base(event.Name) != name {
					continue
				}
				conf, err := Load(path)
				if err != nil {
					log.Printf("config: reload %s: %v", path, err)
					continue
				}
				log.Printf("config: reloaded %s", path)
				fn(conf)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("config: watcher error: %v", err)
			}
		}
	}()

	DebugLog("config: watching %s", path)
	return watcher.Close, nil
}
