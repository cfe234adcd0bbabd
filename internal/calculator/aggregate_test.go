package calculator

import (
	"math"
	"testing"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

func rec(employee string, amount, commission float64, product bool) model.SaleRecord {
	return model.SaleRecord{
		SaleLine:         model.SaleLine{Employee: employee, Item: "x", Amount: amount},
		IsProduct:        product,
		CommissionAmount: commission,
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	t.Parallel()

	s := Aggregate(nil)
	if !s.IsEmpty() || s.GrandProduction != 0 || s.TransactionCount != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestAggregate_SharesSumToOne(t *testing.T) {
	t.Parallel()

	records := []model.SaleRecord{
		rec("Julio", 33.33, 13.33, false),
		rec("Jhon", 40, 14, false),
		rec("Ana", 0.01, 0, false),
		rec("Julio", 50, 5, true),
		rec("Maria", 17.77, 4.44, false),
	}
	s := Aggregate(records)

	sum := 0.0
	for _, e := range s.Employees {
		sum += e.ProductionShare
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("shares sum=%v, want 1", sum)
	}
}

func TestAggregate_ZeroGrandTotal(t *testing.T) {
	t.Parallel()

	s := Aggregate([]model.SaleRecord{rec("Julio", 0, 0, false), rec("Jhon", 0, 0, false)})
	for _, e := range s.Employees {
		if e.ProductionShare != 0 {
			t.Fatalf("share=%v, want 0", e.ProductionShare)
		}
	}
}

func TestAggregate_GroupsSplitsAndSorts(t *testing.T) {
	t.Parallel()

	records := []model.SaleRecord{
		rec("Ana", 100, 25, false),
		rec("Julio", 50, 5, true),
		rec("Julio", 100, 40, false),
		rec("Jhon", 100, 25, false),
		rec("Ana", 20, 2, true),
	}
	s := Aggregate(records)

	wantOrder := []string{"Julio", "Ana", "Jhon"}
	if len(s.Employees) != len(wantOrder) {
		t.Fatalf("employees=%d, want %d", len(s.Employees), len(wantOrder))
	}
	for i, name := range wantOrder {
		if s.Employees[i].Employee != name {
			t.Fatalf("employees[%d]=%s, want %s", i, s.Employees[i].Employee, name)
		}
	}

	julio := s.Employees[0]
	if julio.TotalProduction != 150 || julio.TotalCommission != 45 || julio.TransactionCount != 2 {
		t.Fatalf("julio=%+v", julio)
	}
	if julio.ProductProduction != 50 || julio.ServiceProduction != 100 || julio.ProductCommission != 5 || julio.ServiceCommission != 40 {
		t.Fatalf("julio split=%+v", julio)
	}

	// Ana 的提成（25+2）高于 Jhon
	if s.Employees[1].TotalCommission != 27 {
		t.Fatalf("ana commission=%v", s.Employees[1].TotalCommission)
	}
	if s.GrandProduction != 370 || s.TransactionCount != 5 {
		t.Fatalf("grand=%v count=%d", s.GrandProduction, s.TransactionCount)
	}
}

func TestAggregate_TiesKeepFirstAppearance(t *testing.T) {
	t.Parallel()

	s := Aggregate([]model.SaleRecord{
		rec("Maria", 40, 10, false),
		rec("Jhon", 40, 10, false),
		rec("Ana", 40, 10, false),
	})
	want := []string{"Maria", "Jhon", "Ana"}
	for i, name := range want {
		if s.Employees[i].Employee != name {
			t.Fatalf("employees[%d]=%s, want %s", i, s.Employees[i].Employee, name)
		}
	}
}

func TestAggregate_GroupsSpellingVariants(t *testing.T) {
	t.Parallel()

	s := Aggregate([]model.SaleRecord{
		rec("Julio", 100, 40, false),
		rec("JULIO", 50, 20, false),
		rec("  julio ", 10, 4, false),
		rec("Jhon", 40, 10, false),
	})
	if len(s.Employees) != 2 {
		t.Fatalf("employees=%d, want 2: %+v", len(s.Employees), s.Employees)
	}
	julio := s.Employees[0]
	if julio.Employee != "Julio" {
		t.Fatalf("employee=%q, want first spelling %q", julio.Employee, "Julio")
	}
	if julio.TransactionCount != 3 || math.Abs(julio.TotalCommission-64) > 1e-9 {
		t.Fatalf("julio=%+v, want 3 transactions / 64.00", julio)
	}
}
