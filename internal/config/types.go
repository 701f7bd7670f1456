package config

// Config is the whole shopbot configuration file.
// Unknown keys are rejected (strict decode) so typos surface at load time.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Catalog  CatalogConfig  `json:"catalog"`
	Web      WebConfig      `json:"web"`
	Storage  *StorageConfig `json:"storage,omitempty"`
	Sessions *SessionConfig `json:"sessions,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`

	// AdminChatID receives order notifications. Zero/absent means admin
	// notifications are skipped with a warning (degraded, not fatal).
	AdminChatID int64 `json:"admin_chat_id,omitempty"`

	// WebAppURL is the public HTTPS URL of the mini-app opened by /start.
	WebAppURL string `json:"webapp_url"`

	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`

	// SendRatePerSec caps outbound sendMessage calls.
	SendRatePerSec int `json:"send_rate_per_sec,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// CatalogConfig controls the spreadsheet-backed product catalog.
//
// Refresh is a robfig/cron spec (e.g. "@every 5m", "*/10 * * * *").
// CacheTTL and FetchTimeout are Go duration strings.
type CatalogConfig struct {
	SourceURL    string `json:"source_url"`
	Refresh      string `json:"refresh,omitempty"`
	CacheTTL     string `json:"cache_ttl,omitempty"`
	FetchTimeout string `json:"fetch_timeout,omitempty"`
}

// WebConfig controls the HTTP server that hosts the mini-app static files and
// the catalog API.
type WebConfig struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr,omitempty"`       // default ":8080"
	StaticDir string `json:"static_dir,omitempty"` // default "./webapp"

	// Server timeouts (Go duration strings).
	ReadTimeout  string `json:"read_timeout,omitempty"`
	WriteTimeout string `json:"write_timeout,omitempty"`
	IdleTimeout  string `json:"idle_timeout,omitempty"`
}

// StorageConfig controls the order journal.
//
// Driver values:
//   - "none" (or empty): journaling disabled
//   - "file": dependency-free jsonl backend
//   - "sqlite": SQLite database file (optional build tag)
//   - "http": POST each order row to an external collector (spreadsheet webhook)
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path,omitempty"`
	URL         string `json:"url,omitempty"`          // http driver
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// SessionConfig controls the per-customer session store.
//
// Driver values: "memory" (default) or "redis".
type SessionConfig struct {
	Driver   string `json:"driver,omitempty"`
	Addr     string `json:"addr,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
	TTL      string `json:"ttl,omitempty"` // Go duration string
}
