package exporter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hocordovaesquen/blushnominas/internal/model"
)

func samplePayroll() Payroll {
	return Payroll{
		Summary: model.Summary{
			Employees: []model.EmployeeSummary{
				{Employee: "Julio", TransactionCount: 2, ServiceProduction: 100, ServiceCommission: 40, ProductProduction: 50, ProductCommission: 5, TotalProduction: 150, TotalCommission: 45, ProductionShare: 0.75},
				{Employee: "Ana", TransactionCount: 1, ServiceProduction: 50, ServiceCommission: 12.5, TotalProduction: 50, TotalCommission: 12.5, ProductionShare: 0.25},
			},
			GrandProduction:  200,
			GrandCommission:  57.5,
			TransactionCount: 3,
		},
		Records: []model.SaleRecord{
			{SaleLine: model.SaleLine{Date: "2025-10-01", Employee: "Julio", Item: "CORTE", Amount: 100, Client: "Rosa"}, CommissionRule: "SERVICIO COMPLETO", CommissionRate: 0.4, CommissionAmount: 40},
			{SaleLine: model.SaleLine{Date: "2025-10-01", Employee: "Julio", Item: "SHAMPOO 300ML", Amount: 50}, IsProduct: true, CommissionRule: "PRODUCTO", CommissionRate: 0.1, CommissionAmount: 5},
			{SaleLine: model.SaleLine{Date: "2025-10-02", Employee: "Ana", Item: "TINTE", Amount: 50}, CommissionRule: "SERVICIO", CommissionRate: 0.25, CommissionAmount: 12.5},
		},
	}
}

func mustFormula(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	got, err := f.GetCellFormula(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellFormula(%s!%s): %v", sheet, cell, err)
	}
	return got
}

func mustValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	got, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s): %v", sheet, cell, err)
	}
	return got
}

func TestExport_SheetsAndHeaders(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(nil).Export(samplePayroll(), ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != SummarySheet || sheets[1] != DetailSheet {
		t.Fatalf("sheets=%v", sheets)
	}
	if got := mustValue(t, f, SummarySheet, "K1"); got != "MONTO A PAGAR" {
		t.Fatalf("K1=%q", got)
	}
	if got := mustValue(t, f, DetailSheet, "H1"); got != "COMISIÓN" {
		t.Fatalf("detail H1=%q", got)
	}
}

func TestExport_SummaryFormulas(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(nil).Export(samplePayroll(), ExportOptions{
		Adjustments: map[string]model.Adjustment{"Ana": {Deductions: 5, Extras: 10}},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	cases := map[string]string{
		"G2": "C2+E2",
		"H2": "D2+F2",
		"K2": "H2-I2+J2",
		"L2": "IF($G$4=0,0,G2/$G$4)",
		"K3": "H3-I3+J3",
		"B4": "SUM(B2:B3)",
		"K4": "SUM(K2:K3)",
	}
	for cell, want := range cases {
		if got := mustFormula(t, f, SummarySheet, cell); got != want {
			t.Fatalf("%s formula=%q, want %q", cell, got, want)
		}
	}

	if got := mustValue(t, f, SummarySheet, "A2"); got != "Julio" {
		t.Fatalf("A2=%q, want Julio (summary order kept)", got)
	}
	if got := mustValue(t, f, SummarySheet, "A4"); got != "TOTAL" {
		t.Fatalf("A4=%q, want TOTAL", got)
	}

	raw := func(cell string) string {
		t.Helper()
		v, err := f.GetCellValue(SummarySheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		return v
	}
	if raw("I3") != "5" || raw("J3") != "10" {
		t.Fatalf("Ana adjustments I3=%q J3=%q", raw("I3"), raw("J3"))
	}
	if raw("I2") != "0" {
		t.Fatalf("Julio deductions I2=%q, want 0", raw("I2"))
	}
}

func TestExport_DetailRows(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(nil).Export(samplePayroll(), ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	if got := mustFormula(t, f, DetailSheet, "H3"); got != "ROUND(E3*G3,2)" {
		t.Fatalf("H3 formula=%q", got)
	}
	if got := mustValue(t, f, DetailSheet, "D3"); got != "PRODUCTO" {
		t.Fatalf("D3=%q, want PRODUCTO", got)
	}
	if got := mustValue(t, f, DetailSheet, "F2"); got != "SERVICIO COMPLETO" {
		t.Fatalf("F2=%q", got)
	}
	if got := mustValue(t, f, DetailSheet, "I2"); got != "Rosa" {
		t.Fatalf("I2=%q", got)
	}

	rows, err := f.GetRows(DetailSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("detail rows=%d, want 4", len(rows))
	}
}

func TestExport_EmptyPayrollStillHasTotals(t *testing.T) {
	t.Parallel()

	f, err := NewExporter(nil).Export(Payroll{}, ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	if got := mustValue(t, f, SummarySheet, "A2"); got != "TOTAL" {
		t.Fatalf("A2=%q, want TOTAL", got)
	}
	if got := mustFormula(t, f, SummarySheet, "K2"); got != "0" {
		t.Fatalf("K2 formula=%q, want 0", got)
	}
}

func TestExport_ReportsProgress(t *testing.T) {
	t.Parallel()

	var events []ProgressEvent
	f, err := NewExporter(nil).Export(samplePayroll(), ExportOptions{
		Progress: func(e ProgressEvent) { events = append(events, e) },
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	if len(events) == 0 || events[len(events)-1].Percent != 100 {
		t.Fatalf("events=%v", events)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Percent < events[i-1].Percent {
			t.Fatalf("progress went backwards: %v", events)
		}
	}
}

func TestWriteFileAndFileName(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Date(2025, 10, 31, 18, 0, 0, 0, time.UTC) }
	e := NewExporter(now)
	if got := e.FileName(); got != "Nomina_Blush_2025-10-31.xlsx" {
		t.Fatalf("FileName=%q", got)
	}

	path := filepath.Join(t.TempDir(), e.FileName())
	if err := e.WriteFile(path, samplePayroll(), ExportOptions{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if got := mustFormula(t, f, SummarySheet, "H2"); got != "D2+F2" {
		t.Fatalf("H2 formula=%q after reopen", got)
	}
}
