package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Settings is the persisted application state. Pointer fields are optional;
// a nil geometry value means the window manager decides.
type Settings struct {
	RefreshIntervalSeconds int      `json:"refresh_interval_seconds"`
	Theme                  string   `json:"theme"`
	WindowWidth            *float64 `json:"window_width,omitempty"`
	WindowHeight           *float64 `json:"window_height,omitempty"`
	WindowX                *float64 `json:"window_x,omitempty"`
	WindowY                *float64 `json:"window_y,omitempty"`
}

// DefaultSettings returns the settings used before anything was saved.
func DefaultSettings() Settings {
	return Settings{RefreshIntervalSeconds: 2, Theme: "dark"}
}

// EnsureDB opens (creating if necessary) the settings database at path.
func EnsureDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := InitDB(database); err != nil {
		database.Close()
		return nil, err
	}
	log.Info().Str("path", path).Msg("settings database ready")
	return database, nil
}

// InitDB creates the schema when missing.
func InitDB(database *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS app_settings (
	  id INTEGER PRIMARY KEY CHECK (id = 1),
	  refresh_interval_seconds INTEGER NOT NULL,
	  theme TEXT NOT NULL,
	  window_width REAL,
	  window_height REAL,
	  window_x REAL,
	  window_y REAL,
	  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := database.Exec(schema); err != nil {
		return fmt.Errorf("create settings table: %w", err)
	}
	return nil
}

// LoadSettings reads the persisted settings, falling back to defaults when
// nothing has been saved yet.
func LoadSettings(database *sql.DB) (Settings, error) {
	row := database.QueryRow(`
		SELECT refresh_interval_seconds, theme,
		       window_width, window_height, window_x, window_y
		FROM app_settings WHERE id = 1`)

	var s Settings
	err := row.Scan(&s.RefreshIntervalSeconds, &s.Theme,
		&s.WindowWidth, &s.WindowHeight, &s.WindowX, &s.WindowY)
	if err == sql.ErrNoRows {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if s.RefreshIntervalSeconds <= 0 {
		s.RefreshIntervalSeconds = DefaultSettings().RefreshIntervalSeconds
	}
	return s, nil
}

// SaveSettings upserts the single settings row.
func SaveSettings(database *sql.DB, s *Settings) error {
	if s.RefreshIntervalSeconds <= 0 {
		s.RefreshIntervalSeconds = DefaultSettings().RefreshIntervalSeconds
	}
	if s.Theme == "" {
		s.Theme = DefaultSettings().Theme
	}
	_, err := database.Exec(`
		INSERT INTO app_settings
		  (id, refresh_interval_seconds, theme,
		   window_width, window_height, window_x, window_y, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		  refresh_interval_seconds = excluded.refresh_interval_seconds,
		  theme = excluded.theme,
		  window_width = excluded.window_width,
		  window_height = excluded.window_height,
		  window_x = excluded.window_x,
		  window_y = excluded.window_y,
		  updated_at = CURRENT_TIMESTAMP`,
		s.RefreshIntervalSeconds, s.Theme,
		s.WindowWidth, s.WindowHeight, s.WindowX, s.WindowY)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
