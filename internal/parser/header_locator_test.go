package parser

import (
	"fmt"
	"testing"
)

func salesSheetRows() [][]string {
	return [][]string{
		{"REGISTRO VENTA DETALLE"},
		{"Blush Salón & Spa", "", "Periodo: 2025-10"},
		{},
		{"FECHA", "COMPROBANTE", "TV", "CLIENTE", "EMPLEADO", "PRODUCTO / SERVICIO", "TOTAL", "TOTAL COMPROBANTE"},
		{"01/10/2025", "B001-1", "V", "Ana", "Julio", "SHAMPOO X300ML", "50.00", "90.00"},
		{"", "", "", "", "Jhon", "CORTE DE CABELLO", "40.00", ""},
	}
}

func TestLocateHeader_FindsRowBelowTitle(t *testing.T) {
	t.Parallel()

	idx, ok := LocateHeader(salesSheetRows(), HeaderConfig{ScanRows: 30, Required: DefaultRequiredKeywords})
	if !ok {
		t.Fatalf("expected header to be found")
	}
	if idx != 3 {
		t.Fatalf("header row=%d, want 3", idx)
	}
}

func TestLocateHeader_Deterministic(t *testing.T) {
	t.Parallel()

	rows := salesSheetRows()
	cfg := HeaderConfig{ScanRows: 30, Required: []string{"FECHA", "PRODUCTO", "TOTAL"}}
	first, ok := LocateHeader(rows, cfg)
	if !ok {
		t.Fatalf("expected header to be found")
	}
	for i := 0; i < 10; i++ {
		got, ok := LocateHeader(rows, cfg)
		if !ok || got != first {
			t.Fatalf("run %d: got=(%d,%v), want (%d,true)", i, got, ok, first)
		}
	}
}

func TestLocateHeader_RequiresAllKeywords(t *testing.T) {
	t.Parallel()

	rows := make([][]string, 0, 40)
	for i := 0; i < 30; i++ {
		// 只有商品关键词，没有金额关键词
		rows = append(rows, []string{fmt.Sprintf("fila %d", i), "PRODUCTO / SERVICIO", "CANTIDAD"})
	}
	// 第 31 行才是完整表头，超出扫描窗口
	rows = append(rows, []string{"PRODUCTO / SERVICIO", "TOTAL"})

	if idx, ok := LocateHeader(rows, HeaderConfig{ScanRows: 30, Required: DefaultRequiredKeywords}); ok {
		t.Fatalf("expected no header, got row %d", idx)
	}
}

func TestLocateHeader_FirstMatchWins(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"x"},
		{"Producto", "Total"},
		{"PRODUCTO / SERVICIO", "TOTAL", "EMPLEADO"},
	}
	idx, ok := LocateHeader(rows, HeaderConfig{ScanRows: 20, Required: DefaultRequiredKeywords})
	if !ok || idx != 1 {
		t.Fatalf("got=(%d,%v), want (1,true)", idx, ok)
	}

	// 更严格的关键词集合要求员工列
	idx, ok = LocateHeader(rows, HeaderConfig{ScanRows: 20, Required: append([]string{"EMPLEADO"}, DefaultRequiredKeywords...)})
	if !ok || idx != 2 {
		t.Fatalf("strict got=(%d,%v), want (2,true)", idx, ok)
	}
}

func TestPickSheet(t *testing.T) {
	t.Parallel()

	if got := PickSheet([]string{"Portada", "Listado de Registro Ventas"}, nil); got != "Listado de Registro Ventas" {
		t.Fatalf("got=%q", got)
	}
	if got := PickSheet([]string{"Resumen", "Sheet1"}, nil); got != "Sheet1" {
		t.Fatalf("got=%q", got)
	}
	if got := PickSheet([]string{"Datos", "Otros"}, nil); got != "Datos" {
		t.Fatalf("got=%q", got)
	}
	if got := PickSheet(nil, nil); got != "" {
		t.Fatalf("got=%q, want empty", got)
	}
}
