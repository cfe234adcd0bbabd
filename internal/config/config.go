package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/hocordovaesquen/blushnominas/internal/model"
	"github.com/hocordovaesquen/blushnominas/internal/parser"
)

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `toml:"server"`
	Data       DataConfig       `toml:"data"`
	Ingest     IngestConfig     `toml:"ingest"`
	Commission CommissionConfig `toml:"commission"`
	Cache      CacheConfig      `toml:"cache"`
	Watch      WatchConfig      `toml:"watch"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int  `toml:"port"`
	DevMode     bool `toml:"dev_mode"`
	OpenBrowser bool `toml:"open_browser"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// IngestConfig 销售明细读取配置
type IngestConfig struct {
	ScanRows         int      `toml:"scan_rows"`
	RequiredKeywords []string `toml:"required_keywords"`
	SheetKeywords    []string `toml:"sheet_keywords"`
	ValidMarker      string   `toml:"valid_marker"`
	UnassignedLabel  string   `toml:"unassigned_label"`
}

// CommissionConfig 提成配置
type CommissionConfig struct {
	RulesPath   string  `toml:"rules_path"`
	Mode        string  `toml:"mode"`
	FlatPercent float64 `toml:"flat_percent"`
}

// CacheConfig 结果缓存配置
type CacheConfig struct {
	TTLSeconds int `toml:"ttl_seconds"`
}

// WatchConfig 收件目录监听配置
type WatchConfig struct {
	Enabled    bool `toml:"enabled"`
	DebounceMS int  `toml:"debounce_ms"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
	ConfigPath    string
	EnvFileLoaded bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:        8501,
			DevMode:     false,
			OpenBrowser: true,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Ingest: IngestConfig{
			ScanRows:         parser.DefaultScanRows,
			RequiredKeywords: append([]string(nil), parser.DefaultRequiredKeywords...),
			SheetKeywords:    append([]string(nil), parser.DefaultSheetKeywords...),
			ValidMarker:      parser.DefaultValidMarker,
			UnassignedLabel:  model.UnassignedEmployee,
		},
		Commission: CommissionConfig{
			Mode:        string(model.CommissionModeRules),
			FlatPercent: 30,
		},
		Cache: CacheConfig{
			TTLSeconds: 3600,
		},
		Watch: WatchConfig{
			Enabled:    false,
			DebounceMS: 500,
		},
	}
}

// IngestOptions 转换为解析器参数
func (c *AppConfig) IngestOptions() parser.Options {
	opts := parser.DefaultOptions()
	if c.Ingest.ScanRows > 0 {
		opts.Header.ScanRows = c.Ingest.ScanRows
	}
	if len(c.Ingest.RequiredKeywords) > 0 {
		opts.Header.Required = c.Ingest.RequiredKeywords
	}
	if c.Ingest.ValidMarker != "" {
		opts.ValidMarker = c.Ingest.ValidMarker
	}
	if c.Ingest.UnassignedLabel != "" {
		opts.Unassigned = c.Ingest.UnassignedLabel
	}
	return opts
}

// DefaultSettings 配置文件中的提成设置（数据库未保存时使用）
func (c *AppConfig) DefaultSettings() model.Settings {
	return model.Settings{
		Mode:        model.CommissionMode(c.Commission.Mode),
		FlatPercent: c.Commission.FlatPercent,
	}
}

// Validate 检查配置取值
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	switch model.CommissionMode(c.Commission.Mode) {
	case model.CommissionModeRules, model.CommissionModeFlat:
	default:
		return fmt.Errorf("invalid commission.mode: %q", c.Commission.Mode)
	}
	if c.Commission.FlatPercent < 0 || c.Commission.FlatPercent > 100 {
		return fmt.Errorf("invalid commission.flat_percent: %v", c.Commission.FlatPercent)
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("invalid cache.ttl_seconds: %d", c.Cache.TTLSeconds)
	}
	if _, err := parser.CompilePatterns(c.Ingest.RequiredKeywords); err != nil {
		return fmt.Errorf("invalid ingest.required_keywords: %w", err)
	}
	return nil
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadConfigFrom(exeDir)
}

// LoadConfigFrom 从指定目录加载 config.toml 与 .env
func LoadConfigFrom(dir string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{ConfigPath: filepath.Join(dir, "config.toml")}
	config := DefaultConfig()

	// .env 只补充未设置的环境变量
	if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
		info.EnvFileLoaded = true
	}

	data, err := os.ReadFile(info.ConfigPath)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", info.ConfigPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnvOverrides(config, &info); err != nil {
		return nil, info, err
	}

	return config, info, nil
}

// applyEnvOverrides 环境变量覆盖
func applyEnvOverrides(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv("BLUSH_RULES_PATH"); v != "" {
		config.Commission.RulesPath = v
	}
	if v := os.Getenv("BLUSH_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("BLUSH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BLUSH_PORT %q: %w", v, err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	return nil
}

// ResolveDataDir 数据目录的绝对位置；相对路径基于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"exports", "inbox"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}
