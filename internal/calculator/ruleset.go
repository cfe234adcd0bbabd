package calculator

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// DefaultRuleConfig 内置提成规则表
func DefaultRuleConfig() model.RuleConfig {
	cfg, err := ParseRuleConfig(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules.yaml is invalid: %v", err))
	}
	return cfg
}

// ParseRuleConfig 解析 YAML 规则表并校验
func ParseRuleConfig(data []byte) (model.RuleConfig, error) {
	var cfg model.RuleConfig
	if len(data) == 0 {
		return cfg, errors.New("empty rules file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse rules: %w", err)
	}
	if errs := ValidateRuleConfig(cfg); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid rules: %v", errs)
	}
	return cfg, nil
}

// LoadRuleConfig 读取外部规则文件；路径为空时使用内置规则
func LoadRuleConfig(path string) (model.RuleConfig, error) {
	if path == "" {
		return DefaultRuleConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RuleConfig{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRuleConfig(data)
}
