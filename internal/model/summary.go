package model

// EmployeeSummary 单个员工的提成汇总
type EmployeeSummary struct {
	Employee         string  `json:"employee"`
	TotalProduction  float64 `json:"totalProduction"`
	TotalCommission  float64 `json:"totalCommission"`
	TransactionCount int     `json:"transactionCount"`
	ProductionShare  float64 `json:"productionShare"` // 占总产值比例

	ServiceProduction float64 `json:"serviceProduction"`
	ServiceCommission float64 `json:"serviceCommission"`
	ProductProduction float64 `json:"productProduction"`
	ProductCommission float64 `json:"productCommission"`
}

// Summary 汇总结果（按提成总额倒序）
type Summary struct {
	Employees []EmployeeSummary `json:"employees"`

	GrandProduction   float64 `json:"grandProduction"`
	GrandCommission   float64 `json:"grandCommission"`
	TransactionCount  int     `json:"transactionCount"`
	ServiceProduction float64 `json:"serviceProduction"`
	ProductProduction float64 `json:"productProduction"`
}

// IsEmpty 是否没有任何员工数据
func (s Summary) IsEmpty() bool {
	return len(s.Employees) == 0
}

// Adjustment 员工应付金额的人工调整项（导出时写入公式输入列）
type Adjustment struct {
	Deductions float64 `json:"deductions"` // 扣款
	Extras     float64 `json:"extras"`     // 额外奖励
}
