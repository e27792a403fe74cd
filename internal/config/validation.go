package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"console": true,
	"json":    true,
}

// Validate checks the loaded configuration for values that would only
// fail later, at first use.
func (c *Config) Validate() error {
	if level := strings.ToLower(c.Logging.Level); !validLogLevels[level] {
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	if format := strings.ToLower(c.Logging.Format); !validLogFormats[format] {
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}

	if c.Tabs.FreezeAfterMinutes < 0 {
		return fmt.Errorf("tabs.freeze_after_minutes cannot be negative")
	}
	if c.Tabs.DiscardAfterMinutes < 0 {
		return fmt.Errorf("tabs.discard_after_minutes cannot be negative")
	}
	if c.Tabs.DiscardAfterMinutes > 0 && c.Tabs.FreezeAfterMinutes > c.Tabs.DiscardAfterMinutes {
		return fmt.Errorf("tabs.freeze_after_minutes must not exceed tabs.discard_after_minutes")
	}

	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries cannot be negative")
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days cannot be negative")
	}

	if c.Browsing.SearchEngine != "" && !strings.Contains(c.Browsing.SearchEngine, "%s") {
		return fmt.Errorf("browsing.search_engine must contain a %%s query placeholder")
	}
	return nil
}
