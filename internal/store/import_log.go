package store

import (
	"database/sql"
	"fmt"
	"time"
)

// 导入日志状态
const (
	ImportStatusProcessing = "processing"
	ImportStatusSuccess    = "success"
	ImportStatusFailed     = "failed"
)

// ImportLog 一次导入的记录
type ImportLog struct {
	ID              int64      `json:"id"`
	RunID           string     `json:"runId"`
	Filename        string     `json:"filename"`
	FileSize        int64      `json:"fileSize"`
	FileHash        string     `json:"fileHash"`
	SheetName       string     `json:"sheetName"`
	HeaderRow       int        `json:"headerRow"`
	DataRows        int        `json:"dataRows"`
	ImportedRows    int        `json:"importedRows"`
	DroppedRows     int        `json:"droppedRows"`
	Employees       int        `json:"employees"`
	TotalProduction float64    `json:"totalProduction"`
	TotalCommission float64    `json:"totalCommission"`
	CommissionMode  string     `json:"commissionMode"`
	ColumnsJSON     string     `json:"columnsJson"`
	Status          string     `json:"status"`
	ErrorKind       string     `json:"errorKind,omitempty"`
	ErrorMessage    string     `json:"errorMessage,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// ImportOutcome 导入完成时写回的统计
type ImportOutcome struct {
	SheetName       string
	HeaderRow       int
	DataRows        int
	ImportedRows    int
	DroppedRows     int
	Employees       int
	TotalProduction float64
	TotalCommission float64
	CommissionMode  string
	ColumnsJSON     string
}

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(runID, filename string, fileSize int64, fileHash string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (run_id, filename, file_size, file_hash, status)
		VALUES (?, ?, ?, ?, ?)
	`, runID, filename, fileSize, fileHash, ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// CompleteImportLog 标记导入成功
func (s *Store) CompleteImportLog(id int64, out ImportOutcome) error {
	if out.ColumnsJSON == "" {
		out.ColumnsJSON = "{}"
	}
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			sheet_name = ?,
			header_row = ?,
			data_rows = ?,
			imported_rows = ?,
			dropped_rows = ?,
			employees = ?,
			total_production = ?,
			total_commission = ?,
			commission_mode = ?,
			column_mapping_json = ?,
			status = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, out.SheetName, out.HeaderRow, out.DataRows, out.ImportedRows, out.DroppedRows,
		out.Employees, out.TotalProduction, out.TotalCommission, out.CommissionMode, out.ColumnsJSON,
		ImportStatusSuccess, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

// FailImportLog 标记导入失败
func (s *Store) FailImportLog(id int64, kind, message string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			status = ?,
			error_kind = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, ImportStatusFailed, kind, message, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

const importLogColumns = `id, run_id, filename, file_size, file_hash, sheet_name, header_row,
	data_rows, imported_rows, dropped_rows, employees, total_production, total_commission,
	commission_mode, column_mapping_json, status, error_kind, error_message, created_at, completed_at`

// GetImportLogByRun 按 run_id 查询导入日志
func (s *Store) GetImportLogByRun(runID string) (*ImportLog, error) {
	row := s.db.QueryRow(`SELECT `+importLogColumns+` FROM import_logs WHERE run_id = ?`, runID)
	log, err := scanImportLog(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get import log: %w", err)
	}
	return log, nil
}

// ListImportLogs 最近的导入日志，按时间倒序
func (s *Store) ListImportLogs(limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+importLogColumns+` FROM import_logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	var logs []ImportLog
	for rows.Next() {
		log, err := scanImportLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanImportLog(row rowScanner) (*ImportLog, error) {
	var (
		log         ImportLog
		completedAt sql.NullTime
	)
	err := row.Scan(
		&log.ID, &log.RunID, &log.Filename, &log.FileSize, &log.FileHash, &log.SheetName, &log.HeaderRow,
		&log.DataRows, &log.ImportedRows, &log.DroppedRows, &log.Employees, &log.TotalProduction, &log.TotalCommission,
		&log.CommissionMode, &log.ColumnsJSON, &log.Status, &log.ErrorKind, &log.ErrorMessage, &log.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		log.CompletedAt = &t
	}
	return &log, nil
}
