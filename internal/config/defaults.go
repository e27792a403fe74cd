package config

const (
	// DefaultHomepage is opened by new tabs created without a URL.
	DefaultHomepage = "about:blank"

	// DefaultSearchEngine receives non-URL omnibox input. %s is
	// replaced by the query.
	DefaultSearchEngine = "https://duckduckgo.com/?q=%s"
)

func (m *Manager) setDefaults() {
	m.viper.SetDefault("database.path", "")

	m.viper.SetDefault("browsing.homepage", DefaultHomepage)
	m.viper.SetDefault("browsing.search_engine", DefaultSearchEngine)

	m.viper.SetDefault("tabs.freeze_after_minutes", 30)
	m.viper.SetDefault("tabs.discard_after_minutes", 120)

	m.viper.SetDefault("history.max_entries", 10000)
	m.viper.SetDefault("history.retention_days", 90)

	m.viper.SetDefault("logging.level", "info")
	m.viper.SetDefault("logging.format", "console")
}

const defaultConfigYAML = `# sable configuration
# Values here override the built-in defaults; SABLE_* environment
# variables override both.

database:
  # path: /path/to/sable.sqlite   # defaults to $XDG_DATA_HOME/sable/sable.sqlite

browsing:
  homepage: about:blank
  search_engine: "https://duckduckgo.com/?q=%s"

tabs:
  freeze_after_minutes: 30
  discard_after_minutes: 120

history:
  max_entries: 10000
  retention_days: 90

logging:
  level: info     # trace, debug, info, warn, error
  format: console # console or json
`
