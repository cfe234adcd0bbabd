package calculator

import (
	"sort"

	"github.com/hocordovaesquen/blushnominas/internal/model"
	"github.com/hocordovaesquen/blushnominas/internal/util"
)

// Aggregate 按员工汇总产值与提成
//
// 员工按去重音、大写后的姓名分组，显示首次出现的写法；分组顺序为员工首次出现顺序；
// 结果按提成总额倒序，相同时保持首次出现顺序。
// 总产值为 0 时所有占比为 0；空输入返回空汇总。
func Aggregate(records []model.SaleRecord) model.Summary {
	summary := model.Summary{Employees: []model.EmployeeSummary{}}
	if len(records) == 0 {
		return summary
	}

	index := make(map[string]int)
	for _, r := range records {
		key := util.FoldUpper(r.Employee)
		i, ok := index[key]
		if !ok {
			i = len(summary.Employees)
			index[key] = i
			summary.Employees = append(summary.Employees, model.EmployeeSummary{Employee: r.Employee})
		}
		es := &summary.Employees[i]
		es.TotalProduction += r.Amount
		es.TotalCommission += r.CommissionAmount
		es.TransactionCount++
		if r.IsProduct {
			es.ProductProduction += r.Amount
			es.ProductCommission += r.CommissionAmount
		} else {
			es.ServiceProduction += r.Amount
			es.ServiceCommission += r.CommissionAmount
		}
	}

	for i := range summary.Employees {
		es := &summary.Employees[i]
		es.TotalCommission = Round2(es.TotalCommission)
		es.ProductCommission = Round2(es.ProductCommission)
		es.ServiceCommission = Round2(es.ServiceCommission)

		summary.GrandProduction += es.TotalProduction
		summary.GrandCommission += es.TotalCommission
		summary.TransactionCount += es.TransactionCount
		summary.ProductProduction += es.ProductProduction
		summary.ServiceProduction += es.ServiceProduction
	}
	summary.GrandCommission = Round2(summary.GrandCommission)

	for i := range summary.Employees {
		if summary.GrandProduction != 0 {
			summary.Employees[i].ProductionShare = summary.Employees[i].TotalProduction / summary.GrandProduction
		}
	}

	sort.SliceStable(summary.Employees, func(i, j int) bool {
		return summary.Employees[i].TotalCommission > summary.Employees[j].TotalCommission
	})

	return summary
}
