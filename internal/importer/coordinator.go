package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/hocordovaesquen/blushnominas/internal/calculator"
	"github.com/hocordovaesquen/blushnominas/internal/model"
	"github.com/hocordovaesquen/blushnominas/internal/parser"
	"github.com/hocordovaesquen/blushnominas/internal/service/cache"
	"github.com/hocordovaesquen/blushnominas/internal/store"
)

// ErrRunNotFound 运行结果不存在或已过期
var ErrRunNotFound = errors.New("run not found or expired")

// ErrInvalidSettings 提成设置不合法
var ErrInvalidSettings = errors.New("invalid commission settings")

// ImportInput 一次上传
type ImportInput struct {
	Filename string
	Data     []byte
}

// Run 一次导入的完整结果（缓存于内存）
type Run struct {
	ID        string             `json:"fileId"`
	Filename  string             `json:"filename"`
	FileHash  string             `json:"fileHash"`
	Sheet     string             `json:"sheet"`
	Settings  model.Settings     `json:"settings"`
	Ingest    *parser.Result     `json:"-"`
	Records   []model.SaleRecord `json:"-"`
	Summary   model.Summary      `json:"summary"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Empty 过滤后没有数据
func (r *Run) Empty() bool {
	return r == nil || len(r.Records) == 0
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"`      // start/info/done/error
	Message   string      `json:"message"`   // 事件消息
	Data      interface{} `json:"data"`      // 附加数据
	Timestamp time.Time   `json:"timestamp"` // 时间戳
}

// Options 协调器配置
type Options struct {
	Store           *store.Store // 可为空（不记录导入日志、设置不持久化）
	Rules           model.RuleConfig
	Ingest          parser.Options
	SheetKeywords   []string
	DefaultSettings model.Settings
	TTL             time.Duration
	Now             func() time.Time
}

// Coordinator 导入协调器
type Coordinator struct {
	store         *store.Store
	rules         model.RuleConfig
	ruleClass     *calculator.Classifier
	ingest        parser.Options
	sheetKeywords []string
	defaults      model.Settings
	now           func() time.Time

	mu       sync.Mutex
	settings *model.Settings // 未持久化时的内存设置

	runs  *cache.Cache[*Run]   // run id -> run
	byKey *cache.Cache[string] // 内容键 -> run id
}

// NewCoordinator 创建导入协调器
func NewCoordinator(opts Options) (*Coordinator, error) {
	classifier, err := calculator.NewClassifier(opts.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compile commission rules: %w", err)
	}
	if err := ValidateSettings(opts.DefaultSettings); err != nil {
		return nil, err
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.SheetKeywords) == 0 {
		opts.SheetKeywords = parser.DefaultSheetKeywords
	}

	return &Coordinator{
		store:         opts.Store,
		rules:         opts.Rules,
		ruleClass:     classifier,
		ingest:        opts.Ingest,
		sheetKeywords: opts.SheetKeywords,
		defaults:      opts.DefaultSettings,
		now:           opts.Now,
		runs:          cache.New[*Run](opts.TTL, opts.Now),
		byKey:         cache.New[string](opts.TTL, opts.Now),
	}, nil
}

// ValidateSettings 检查提成设置
func ValidateSettings(s model.Settings) error {
	switch s.Mode {
	case model.CommissionModeRules, model.CommissionModeFlat:
	default:
		return fmt.Errorf("%w: mode %q", ErrInvalidSettings, s.Mode)
	}
	if s.FlatPercent < 0 || s.FlatPercent > 100 {
		return fmt.Errorf("%w: flat percent %v out of range [0,100]", ErrInvalidSettings, s.FlatPercent)
	}
	return nil
}

// Settings 当前提成设置
func (c *Coordinator) Settings() (model.Settings, error) {
	if c.store != nil {
		return c.store.GetSettings(c.defaults)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.settings != nil {
		return *c.settings, nil
	}
	return c.defaults, nil
}

// UpdateSettings 保存提成设置；之后的导入按新设置计算
func (c *Coordinator) UpdateSettings(s model.Settings) error {
	if err := ValidateSettings(s); err != nil {
		return err
	}
	if c.store != nil {
		return c.store.SaveSettings(s)
	}
	c.mu.Lock()
	c.settings = &s
	c.mu.Unlock()
	return nil
}

// Rules 规则表（只读）
func (c *Coordinator) Rules() []calculator.Rule {
	return c.ruleClass.Rules()
}

// CachedRuns 缓存中的运行结果数
func (c *Coordinator) CachedRuns() int {
	return c.runs.Len()
}

// Lookup 按 run id 取缓存结果
func (c *Coordinator) Lookup(id string) (*Run, error) {
	run, ok := c.runs.Get(id)
	if !ok {
		return nil, ErrRunNotFound
	}
	return run, nil
}

// Run 同步执行导入；解析失败时返回 *parser.IngestError
func (c *Coordinator) Run(ctx context.Context, input ImportInput) (*Run, error) {
	return c.run(ctx, input, nil)
}

// Import 执行导入，返回进度通道
func (c *Coordinator) Import(ctx context.Context, input ImportInput) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 100)

	go func() {
		defer close(progressChan)

		emit := func(event ProgressEvent) {
			c.sendProgress(progressChan, event)
		}
		run, err := c.run(ctx, input, emit)
		if err != nil {
			event := ProgressEvent{
				Type:      "error",
				Message:   err.Error(),
				Timestamp: c.now(),
			}
			if ie, ok := parser.AsIngestError(err); ok {
				event.Data = ie
			}
			c.sendFinal(ctx, progressChan, event)
			return
		}
		c.sendFinal(ctx, progressChan, ProgressEvent{
			Type:      "done",
			Message:   "导入完成",
			Data:      run,
			Timestamp: c.now(),
		})
	}()

	return progressChan
}

func (c *Coordinator) run(ctx context.Context, input ImportInput, emit func(ProgressEvent)) (run *Run, err error) {
	if emit == nil {
		emit = func(ProgressEvent) {}
	}

	settings, err := c.Settings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	emit(ProgressEvent{
		Type:    "start",
		Message: "开始导入 Excel 文件",
		Data: map[string]interface{}{
			"filename": input.Filename,
			"size":     len(input.Data),
		},
		Timestamp: c.now(),
	})

	key := cache.Key(input.Data, settings.Fingerprint())
	if id, ok := c.byKey.Get(key); ok {
		if cached, ok := c.runs.Get(id); ok {
			emit(ProgressEvent{Type: "info", Message: "使用缓存结果", Data: map[string]string{"fileId": id}, Timestamp: c.now()})
			return cached, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	run = &Run{
		ID:        uuid.NewString(),
		Filename:  input.Filename,
		FileHash:  cache.FileHash(input.Data),
		Settings:  settings,
		CreatedAt: c.now(),
	}

	logID := c.createLog(run, int64(len(input.Data)))

	defer func() {
		// 任何解析异常都转换为诊断信息，不中断进程
		if r := recover(); r != nil {
			log.Printf("import %s panicked: %v", run.ID, r)
			run = nil
			err = parser.NewUnreadableWorkbook(fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			c.failLog(logID, err)
		}
	}()

	if err := c.process(run, input.Data, emit); err != nil {
		return nil, err
	}

	c.completeLog(logID, run)
	c.runs.Put(run.ID, run)
	c.byKey.Put(key, run.ID)

	log.Printf("import %s: %s sheet=%q kept=%d employees=%d", run.ID, run.Filename, run.Sheet, len(run.Records), len(run.Summary.Employees))
	return run, nil
}

// process 读取工作簿、解析、计算提成并汇总
func (c *Coordinator) process(run *Run, data []byte, emit func(ProgressEvent)) error {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return parser.NewUnreadableWorkbook(err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	run.Sheet = parser.PickSheet(sheets, c.sheetKeywords)
	if run.Sheet == "" {
		return parser.NewEmptyWorkbook()
	}

	emit(ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("发现 %d 个 Sheet，使用 \"%s\"", len(sheets), run.Sheet),
		Data: map[string]interface{}{
			"total_sheets": len(sheets),
			"sheet_name":   run.Sheet,
		},
		Timestamp: c.now(),
	})

	rows, err := file.GetRows(run.Sheet)
	if err != nil {
		return parser.NewUnreadableWorkbook(err)
	}
	if len(rows) == 0 {
		return parser.NewEmptyWorkbook()
	}

	result, err := parser.Ingest(rows, c.ingest)
	if err != nil {
		return err
	}
	run.Ingest = result

	emit(ProgressEvent{
		Type:    "info",
		Message: fmt.Sprintf("表头位于第 %d 行，保留 %d 行", result.HeaderRow+1, result.Stats.Kept),
		Data: map[string]interface{}{
			"header_row": result.HeaderRow,
			"columns":    result.Columns,
			"stats":      result.Stats,
		},
		Timestamp: c.now(),
	})

	classifier, err := c.classifierFor(run.Settings)
	if err != nil {
		return err
	}
	run.Records = classifier.ClassifyAll(result.Lines)
	run.Summary = calculator.Aggregate(run.Records)
	return nil
}

func (c *Coordinator) classifierFor(s model.Settings) (*calculator.Classifier, error) {
	if s.Mode == model.CommissionModeFlat {
		return calculator.NewFlatClassifier(s.FlatPercent, c.rules.Product)
	}
	return c.ruleClass, nil
}

func (c *Coordinator) createLog(run *Run, size int64) int64 {
	if c.store == nil {
		return 0
	}
	id, err := c.store.CreateImportLog(run.ID, run.Filename, size, run.FileHash)
	if err != nil {
		log.Printf("import log: %v", err)
		return 0
	}
	return id
}

func (c *Coordinator) completeLog(id int64, run *Run) {
	if c.store == nil || id == 0 {
		return
	}
	out := store.ImportOutcome{
		SheetName:       run.Sheet,
		CommissionMode:  string(run.Settings.Mode),
		Employees:       len(run.Summary.Employees),
		TotalProduction: run.Summary.GrandProduction,
		TotalCommission: run.Summary.GrandCommission,
	}
	if res := run.Ingest; res != nil {
		out.HeaderRow = res.HeaderRow
		out.DataRows = res.Stats.DataRows
		out.ImportedRows = res.Stats.Kept
		out.DroppedRows = res.Stats.DataRows - res.Stats.Kept
		if b, err := json.Marshal(res.Columns); err == nil {
			out.ColumnsJSON = string(b)
		}
	}
	if err := c.store.CompleteImportLog(id, out); err != nil {
		log.Printf("import log: %v", err)
	}
}

func (c *Coordinator) failLog(id int64, cause error) {
	if c.store == nil || id == 0 {
		return
	}
	kind := ""
	if ie, ok := parser.AsIngestError(cause); ok {
		kind = string(ie.Kind)
	}
	if err := c.store.FailImportLog(id, kind, cause.Error()); err != nil {
		log.Printf("import log: %v", err)
	}
}

// sendProgress 发送进度（通道满时丢弃）
func (c *Coordinator) sendProgress(ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	default:
		// 通道已满，丢弃事件
	}
}

// sendFinal 结束事件必须送达，除非调用方已取消
func (c *Coordinator) sendFinal(ctx context.Context, ch chan ProgressEvent, event ProgressEvent) {
	select {
	case ch <- event:
	case <-ctx.Done():
	}
}
