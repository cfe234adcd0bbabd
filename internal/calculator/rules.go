package calculator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

// ValidateRuleConfig 校验规则表（加载时与修改前校验）
func ValidateRuleConfig(cfg model.RuleConfig) []string {
	errs := make([]string, 0, 4)

	checkRate := func(name string, rate float64) {
		if rate < 0 || rate > 1 {
			errs = append(errs, fmt.Sprintf("%s: rate %.4f fuera de [0,1]", name, rate))
		}
	}
	checkLabel := func(name, label string) {
		if strings.TrimSpace(label) == "" {
			errs = append(errs, fmt.Sprintf("%s: label vacío", name))
		}
	}

	checkLabel("product", cfg.Product.Label)
	checkRate("product", cfg.Product.Rate)
	if p := cfg.Product.UnitPattern; p != "" {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Sprintf("product: unit_pattern inválido: %v", err))
		}
	}

	for i, r := range cfg.Dedicated {
		name := fmt.Sprintf("dedicated[%d]", i)
		if strings.TrimSpace(r.Employee) == "" {
			errs = append(errs, name+": employee vacío")
		}
		checkLabel(name, r.Label)
		checkRate(name, r.Rate)
	}

	for i, r := range cfg.Specialized {
		name := fmt.Sprintf("specialized[%d]", i)
		if len(r.Employees) == 0 {
			errs = append(errs, name+": employees vacío")
		}
		if len(r.Keywords) == 0 {
			errs = append(errs, name+": keywords vacío")
		}
		checkLabel(name, r.Label)
		checkRate(name, r.Rate)
	}

	checkLabel("default_service", cfg.DefaultService.Label)
	checkRate("default_service", cfg.DefaultService.Rate)

	return errs
}
