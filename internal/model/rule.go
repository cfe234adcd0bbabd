package model

import "strconv"

// CommissionMode 提成计算方式
type CommissionMode string

const (
	CommissionModeRules CommissionMode = "rules" // 按规则表分类计算
	CommissionModeFlat  CommissionMode = "flat"  // 统一比例
)

// ProductRule 商品识别规则
type ProductRule struct {
	Label        string   `yaml:"label" json:"label"`
	Rate         float64  `yaml:"rate" json:"rate"`
	Keywords     []string `yaml:"keywords" json:"keywords"`          // 商品关键词/品牌
	ClassMarkers []string `yaml:"class_markers" json:"classMarkers"` // 类别列中表示商品的取值
	UnitPattern  string   `yaml:"unit_pattern" json:"unitPattern"`   // 规格单位正则，如 300ML
}

// DedicatedRule 指定员工的全服务提成
type DedicatedRule struct {
	Employee string  `yaml:"employee" json:"employee"`
	Label    string  `yaml:"label" json:"label"`
	Rate     float64 `yaml:"rate" json:"rate"`
}

// SpecializedRule 指定员工 + 关键词命中时的专项提成
type SpecializedRule struct {
	Label     string   `yaml:"label" json:"label"`
	Rate      float64  `yaml:"rate" json:"rate"`
	Employees []string `yaml:"employees" json:"employees"`
	Keywords  []string `yaml:"keywords" json:"keywords"`
}

// ServiceRule 默认服务提成
type ServiceRule struct {
	Label string  `yaml:"label" json:"label"`
	Rate  float64 `yaml:"rate" json:"rate"`
}

// RuleConfig 提成规则表（优先级：商品 > 指定员工 > 专项 > 默认）
type RuleConfig struct {
	Product        ProductRule       `yaml:"product" json:"product"`
	Dedicated      []DedicatedRule   `yaml:"dedicated" json:"dedicated"`
	Specialized    []SpecializedRule `yaml:"specialized" json:"specialized"`
	DefaultService ServiceRule       `yaml:"default_service" json:"defaultService"`
}

// Settings 可在界面调整的提成设置
type Settings struct {
	Mode        CommissionMode `json:"mode"`
	FlatPercent float64        `json:"flatPercent"` // 0-100，仅统一比例模式使用
}

// Fingerprint 设置指纹（参与结果缓存键）
func (s Settings) Fingerprint() string {
	if s.Mode == CommissionModeFlat {
		return "flat:" + strconv.FormatFloat(s.FlatPercent, 'f', -1, 64)
	}
	return string(CommissionModeRules)
}
