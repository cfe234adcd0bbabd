package calculator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hocordovaesquen/blushnominas/internal/model"
	"github.com/hocordovaesquen/blushnominas/internal/util"
)

// FlatRuleLabel 统一比例模式下的规则名称
const FlatRuleLabel = "COMISION GENERAL"

// saleFacts 分类时使用的规范化字段
type saleFacts struct {
	employee string
	item     string
	class    string
}

// Rule 一条提成规则：谓词 + 比例 + 名称
type Rule struct {
	Label     string
	Rate      float64
	IsProduct bool
	match     func(f saleFacts) bool
}

// Classifier 按顺序匹配的提成规则列表，第一条命中生效，最后一条为默认规则
type Classifier struct {
	rules   []Rule
	product func(f saleFacts) bool
}

// NewClassifier 根据规则表构建分类器
func NewClassifier(cfg model.RuleConfig) (*Classifier, error) {
	if errs := ValidateRuleConfig(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid rules: %v", errs)
	}

	isProduct, err := productPredicate(cfg.Product)
	if err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, 2+len(cfg.Dedicated)+len(cfg.Specialized))
	rules = append(rules, Rule{
		Label:     cfg.Product.Label,
		Rate:      cfg.Product.Rate,
		IsProduct: true,
		match:     isProduct,
	})

	for _, d := range cfg.Dedicated {
		name := util.FoldUpper(d.Employee)
		rules = append(rules, Rule{
			Label: d.Label,
			Rate:  d.Rate,
			match: func(f saleFacts) bool {
				return employeeMatches(f.employee, name)
			},
		})
	}

	for _, s := range cfg.Specialized {
		employees := foldAll(s.Employees)
		keywords := foldAll(s.Keywords)
		rules = append(rules, Rule{
			Label: s.Label,
			Rate:  s.Rate,
			match: func(f saleFacts) bool {
				if !containsAny(f.item, keywords) {
					return false
				}
				for _, e := range employees {
					if employeeMatches(f.employee, e) {
						return true
					}
				}
				return false
			},
		})
	}

	rules = append(rules, Rule{
		Label: cfg.DefaultService.Label,
		Rate:  cfg.DefaultService.Rate,
		match: func(saleFacts) bool { return true },
	})

	return &Classifier{rules: rules, product: isProduct}, nil
}

// NewFlatClassifier 统一比例分类器（percent 取 0-100）
// 商品识别仍按规则表进行，仅用于区分商品/服务的汇总
func NewFlatClassifier(percent float64, product model.ProductRule) (*Classifier, error) {
	if percent < 0 || percent > 100 {
		return nil, fmt.Errorf("flat percent %.2f out of range [0,100]", percent)
	}
	isProduct, err := productPredicate(product)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		rules: []Rule{{
			Label: FlatRuleLabel,
			Rate:  percent / 100,
			match: func(saleFacts) bool { return true },
		}},
		product: isProduct,
	}, nil
}

// Rules 已编译的规则（按优先级）
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify 为一行销售明细选择提成规则并计算提成
func (c *Classifier) Classify(line model.SaleLine) model.SaleRecord {
	f := saleFacts{
		employee: util.FoldUpper(line.Employee),
		item:     util.FoldUpper(line.Item),
		class:    util.FoldUpper(line.Class),
	}

	rec := model.SaleRecord{SaleLine: line}
	for _, r := range c.rules {
		if !r.match(f) {
			continue
		}
		rec.CommissionRule = r.Label
		rec.CommissionRate = r.Rate
		rec.IsProduct = r.IsProduct || c.product(f)
		rec.CommissionAmount = Commission(line.Amount, r.Rate)
		break
	}
	return rec
}

// ClassifyAll 批量分类
func (c *Classifier) ClassifyAll(lines []model.SaleLine) []model.SaleRecord {
	out := make([]model.SaleRecord, 0, len(lines))
	for _, l := range lines {
		out = append(out, c.Classify(l))
	}
	return out
}

// productPredicate 类别列标记为商品，或名称包含商品关键词/品牌/规格单位
func productPredicate(p model.ProductRule) (func(f saleFacts) bool, error) {
	keywords := foldAll(p.Keywords)
	markers := foldAll(p.ClassMarkers)

	var unit *regexp.Regexp
	if p.UnitPattern != "" {
		re, err := regexp.Compile(p.UnitPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid unit pattern: %w", err)
		}
		unit = re
	}

	return func(f saleFacts) bool {
		if f.class != "" && containsAny(f.class, markers) {
			return true
		}
		if containsAny(f.item, keywords) {
			return true
		}
		return unit != nil && unit.MatchString(f.item)
	}, nil
}

// employeeMatches 姓名相同，或以规则姓名开头（"JULIO PEREZ" 命中 "JULIO"）
func employeeMatches(employee, name string) bool {
	if name == "" {
		return false
	}
	return employee == name || strings.HasPrefix(employee, name+" ")
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func foldAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if v := util.FoldUpper(it); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Commission 金额 × 比例，按十进制计算后四舍五入到分
func Commission(amount, rate float64) float64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
}

// Round2 四舍五入到分（十进制，0.5 分进位）
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
