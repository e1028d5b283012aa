package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dori/leadboard/internal/db"
)

// DefaultDocumentKey is the key the CRM document has always been stored under
const DefaultDocumentKey = "lume_crm_data"

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:       db.DefaultDataDir(),
		DocumentKey:   DefaultDocumentKey,
		Theme:         "nord",
		Notifications: true,
		IndexPolicy:   "clamp",
		HistoryLimit:  db.DefaultHistoryLimit,
		Log: LogConfig{
			Level: "info",
		},
		Redis: RedisConfig{
			TTL: 10 * time.Minute,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// WriteDefault writes a commented default configuration to path
func WriteDefault(path string) error {
	content := `# leadboard configuration
# Every key can be overridden with a LEADBOARD_ environment variable,
# e.g. LEADBOARD_SERVER_ADDR=:9090

# data_dir: ~/.local/share/leadboard
# db_path: ~/.local/share/leadboard/leadboard.db
document_key: lume_crm_data

# Theme: nord, dracula
theme: nord
notifications: true

# What a move to an index outside the column does:
#   clamp  - move to the nearest end
#   strict - ignore the move
index_policy: clamp

# Saved revisions kept for "leadboard history" / "leadboard restore"
history_limit: 20

log:
  level: info
  # file: ~/.local/share/leadboard/leadboard.log

# Optional Redis read-through cache for the document
redis:
  # url: redis://localhost:6379/0
  ttl: 10m

# HTTP API ("leadboard serve")
server:
  addr: ":8080"
  # Admin routes need a bearer token signed with this secret (HS256)
  # jwt_secret: change-me
`

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(content), 0644)
}
