package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

const (
	keyCommissionMode = "commission_mode"
	keyFlatPercent    = "flat_percent"
)

// ErrConfigNotFound 配置项不存在
var ErrConfigNotFound = errors.New("config key not found")

// GetConfig 获取配置项
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, key)
		}
		return "", err
	}
	return value, nil
}

// GetConfigFloat 获取浮点数配置项
func (s *Store) GetConfigFloat(key string) (float64, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(value, 64)
}

// SetConfig 设置配置项
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// SetConfigFloat 设置浮点数配置项
func (s *Store) SetConfigFloat(key string, value float64) error {
	return s.SetConfig(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// GetAllConfig 获取所有配置项
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}

// GetSettings 读取提成设置；未保存过的项使用 defaults
func (s *Store) GetSettings(defaults model.Settings) (model.Settings, error) {
	out := defaults

	mode, err := s.GetConfig(keyCommissionMode)
	switch {
	case err == nil:
		out.Mode = model.CommissionMode(mode)
	case !errors.Is(err, ErrConfigNotFound):
		return defaults, fmt.Errorf("failed to get commission_mode: %w", err)
	}

	percent, err := s.GetConfigFloat(keyFlatPercent)
	switch {
	case err == nil:
		out.FlatPercent = percent
	case !errors.Is(err, ErrConfigNotFound):
		return defaults, fmt.Errorf("failed to get flat_percent: %w", err)
	}

	return out, nil
}

// SaveSettings 保存提成设置
func (s *Store) SaveSettings(settings model.Settings) error {
	if err := s.SetConfig(keyCommissionMode, string(settings.Mode)); err != nil {
		return fmt.Errorf("failed to set commission_mode: %w", err)
	}
	if err := s.SetConfigFloat(keyFlatPercent, settings.FlatPercent); err != nil {
		return fmt.Errorf("failed to set flat_percent: %w", err)
	}
	return nil
}
