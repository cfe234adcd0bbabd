package model

// CanonicalColumn 规范列名（表头经同义词映射后的统一名称）
//
// 取值即规范表头文本本身，因此对已规范的表头再次映射结果不变。
type CanonicalColumn string

const (
	ColumnDate     CanonicalColumn = "FECHA"               // 日期
	ColumnEmployee CanonicalColumn = "EMPLEADO"            // 员工
	ColumnItem     CanonicalColumn = "PRODUCTO / SERVICIO" // 商品/服务名称
	ColumnAmount   CanonicalColumn = "TOTAL"               // 金额
	ColumnClass    CanonicalColumn = "CLASE"               // 类别标记
	ColumnValidity CanonicalColumn = "TV"                  // 有效销售标记
	ColumnClient   CanonicalColumn = "CLIENTE"             // 客户
	ColumnOrderID  CanonicalColumn = "COMPROBANTE"         // 单据号
)

// AllColumns 全部规范列（固定顺序）
var AllColumns = []CanonicalColumn{
	ColumnDate,
	ColumnEmployee,
	ColumnItem,
	ColumnAmount,
	ColumnClass,
	ColumnValidity,
	ColumnClient,
	ColumnOrderID,
}

// FillDownColumns 只在订单首行填写、需要向下填充的列
var FillDownColumns = []CanonicalColumn{
	ColumnDate,
	ColumnValidity,
	ColumnOrderID,
	ColumnClient,
}

// RequiredColumns 必须识别出的列
var RequiredColumns = []CanonicalColumn{
	ColumnItem,
	ColumnEmployee,
	ColumnAmount,
}
