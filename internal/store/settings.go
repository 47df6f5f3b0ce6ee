package store

import (
	"fmt"
	"strconv"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// LoadSettings reads the phase durations, falling back to defaults for
// any key that is missing or unparsable.
func (s *Store) LoadSettings() Settings {
	cfg := DefaultSettings()
	cfg.WorkMinutes = s.getSettingInt("work_minutes", cfg.WorkMinutes)
	cfg.BreakMinutes = s.getSettingInt("break_minutes", cfg.BreakMinutes)
	return cfg
}

func (s *Store) SaveSettings(cfg Settings) error {
	if err := s.SetSetting("work_minutes", strconv.Itoa(cfg.WorkMinutes)); err != nil {
		return fmt.Errorf("save work minutes: %w", err)
	}
	if err := s.SetSetting("break_minutes", strconv.Itoa(cfg.BreakMinutes)); err != nil {
		return fmt.Errorf("save break minutes: %w", err)
	}
	return nil
}

func (s *Store) getSettingInt(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
