package model

// UnassignedEmployee 员工为空时使用的占位名称
const UnassignedEmployee = "Sin Asignar"

// SaleLine 清洗后的一行销售明细（尚未分类）
type SaleLine struct {
	RowNo    int     `json:"rowNo"` // Excel 行号（从 1 开始）
	Date     string  `json:"date"`
	Employee string  `json:"employee"`
	Item     string  `json:"item"`
	Class    string  `json:"class,omitempty"`
	Client   string  `json:"client,omitempty"`
	OrderID  string  `json:"orderId,omitempty"`
	Amount   float64 `json:"amount"`
}

// SaleRecord 已分类、已计算提成的销售记录
//
// 由分类器从 SaleLine 创建，之后只读。
type SaleRecord struct {
	SaleLine

	IsProduct        bool    `json:"isProduct"`
	CommissionRule   string  `json:"commissionRule"`
	CommissionRate   float64 `json:"commissionRate"` // 0-1
	CommissionAmount float64 `json:"commissionAmount"`
}

// Kind 分类名称（用于展示与导出）
func (r SaleRecord) Kind() string {
	if r.IsProduct {
		return "PRODUCTO"
	}
	return "SERVICIO"
}
