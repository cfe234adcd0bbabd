package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hocordovaesquen/blushnominas/internal/exporter"
	"github.com/hocordovaesquen/blushnominas/internal/util"
)

// WatchOptions 收件目录监听配置
type WatchOptions struct {
	InboxDir   string
	ExportDir  string
	Debounce   time.Duration
	OnComplete func(path string, run *Run, err error) // 可为空
}

// Watcher 监听收件目录，新放入的销售明细自动生成工资表
type Watcher struct {
	coordinator *Coordinator
	exporter    *exporter.Exporter
	opts        WatchOptions
}

// NewWatcher 创建监听器
func NewWatcher(c *Coordinator, e *exporter.Exporter, opts WatchOptions) (*Watcher, error) {
	if opts.InboxDir == "" || opts.ExportDir == "" {
		return nil, errors.New("inbox and export directories are required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Watcher{coordinator: c, exporter: e, opts: opts}, nil
}

// Run 阻塞运行直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.opts.InboxDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.opts.InboxDir, err)
	}
	log.Printf("watching inbox %s", w.opts.InboxDir)

	// 同一文件的连续写入合并为一次处理
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.opts.Debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isWorkbook(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				pending[ev.Name] = time.Now()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < w.opts.Debounce {
					continue
				}
				delete(pending, path)
				run, out, err := w.ProcessFile(ctx, path)
				if err != nil {
					log.Printf("inbox %s: %v", filepath.Base(path), err)
				} else {
					log.Printf("inbox %s -> %s (comisiones %s)", filepath.Base(path), out, util.FormatCurrency(run.Summary.GrandCommission))
				}
				if w.opts.OnComplete != nil {
					w.opts.OnComplete(path, run, err)
				}
			}
		}
	}
}

// ProcessFile 导入一个文件并把工资表写到导出目录
func (w *Watcher) ProcessFile(ctx context.Context, path string) (*Run, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 文件已被移走（如临时文件重命名）
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to read: %w", err)
	}

	run, err := w.coordinator.Run(ctx, ImportInput{Filename: filepath.Base(path), Data: data})
	if err != nil {
		return nil, "", err
	}

	out := filepath.Join(w.opts.ExportDir, ExportName(run.CreatedAt, path))
	payroll := exporter.Payroll{Summary: run.Summary, Records: run.Records}
	if err := w.exporter.WriteFile(out, payroll, exporter.ExportOptions{}); err != nil {
		return run, "", fmt.Errorf("failed to write %s: %w", out, err)
	}
	return run, out, nil
}

// ExportName 收件目录处理结果的文件名：Nomina_Blush_<日期>_<原文件名>.xlsx
func ExportName(t time.Time, source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		}
		return r
	}, base)
	return fmt.Sprintf("Nomina_Blush_%s_%s.xlsx", t.Format("2006-01-02"), base)
}

func isWorkbook(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}
