package config

import (
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch reloads the config file whenever it changes on disk and hands the
// freshly validated configuration to onChange. Invalid edits are logged and ignored.
// It is a no-op when the configuration did not come from a file.
func (c *Config) Watch(log *zap.Logger, onChange func(*Config)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		var next Config
		if err := c.v.Unmarshal(&next); err != nil {
			log.Warn("Ignoring unreadable config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		next.v = c.v

		if err := next.Validate(); err != nil {
			log.Warn("Ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}

		log.Info("Configuration reloaded", zap.String("file", e.Name))
		onChange(&next)
	})
	c.v.WatchConfig()
}
