package params

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/c2xstation/storefront/log"
)

// WatchConfigFile reloads configFile on every write. A reloaded config only
// replaces the active one when it passes CheckConfig. Closing stop ends watching.
func WatchConfigFile(configFile string, onReload func(*StoreConfig), stop <-chan struct{}) {
	if configFile == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error("fsnotify: new watcher failed", "err", err)
		return
	}

	file := filepath.Clean(configFile)
	err = watcher.Add(filepath.Dir(file))
	if err != nil {
		log.Error("fsnotify: add config path failed", "err", err)
		_ = watcher.Close()
		return
	}
	log.Infof("fsnotify: start to watch config file %v", file)

	go startWatcher(watcher, file, onReload, stop)
}

func startWatcher(watcher *fsnotify.Watcher, file string, onReload func(*StoreConfig), stop <-chan struct{}) {
	defer watcher.Close()

	for {
		select {
		case <-stop:
			return
		case ev, ok := <-watcher.Events:
			if !ok { // Channel was closed
				log.Error("fsnotify: channel was closed")
				return
			}
			if filepath.Clean(ev.Name) != file {
				continue
			}
			log.Trace("fsnotify: watcher event", "file", ev.Name, "op", ev.Op)
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			config, err := reloadConfig(file)
			if err != nil {
				log.Warn("fsnotify: reload config failed", "err", err)
				continue
			}
			log.Info("fsnotify: reload config success")
			if onReload != nil {
				onReload(config)
			}
		case err, ok := <-watcher.Errors:
			if !ok { // Channel was closed
				log.Error("fsnotify: channel was closed")
				return
			}
			log.Warn("fsnotify: watcher error", "err", err)
		}
	}
}

func reloadConfig(file string) (*StoreConfig, error) {
	config, err := ReadConfig(file)
	if err != nil {
		return nil, err
	}
	if err = config.CheckConfig(); err != nil {
		return nil, err
	}
	// the wallet key is only loaded at startup
	if old := GetConfig(); old != nil && old.Wallet != nil {
		config.Wallet = old.Wallet
	}
	SetConfig(config)
	return config, nil
}
