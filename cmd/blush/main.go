package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hocordovaesquen/blushnominas/internal/config"
	"github.com/hocordovaesquen/blushnominas/internal/server"
	"github.com/hocordovaesquen/blushnominas/internal/util"
)

var (
	port      = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode   = flag.Bool("dev", false, "开发模式")
	dataDir   = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	rulesPath = flag.String("rules", "", "提成规则表 YAML (覆盖配置文件)")
	noBrowser = flag.Bool("no-browser", false, "不自动打开浏览器")
	watch     = flag.Bool("watch", false, "监听 data/inbox 自动生成工资表")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  BLUSH - Cálculo de Nómina")
	fmt.Println("==========================================")

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	if info.EnvFileLoaded {
		fmt.Println("已加载 .env")
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if !info.PortSpecified && *port == 0 {
		cfg.Server.Port = util.FindAvailablePort(cfg.Server.Port)
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *rulesPath != "" {
		cfg.Commission.RulesPath = *rulesPath
	}
	if *noBrowser {
		cfg.Server.OpenBrowser = false
	}
	if *watch {
		cfg.Watch.Enabled = true
	}

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	fmt.Printf("数据目录: %s\n", srv.DataDir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.StartWatcher(ctx); err != nil {
		log.Printf("收件目录监听启动失败: %v", err)
	} else if cfg.Watch.Enabled {
		fmt.Println("收件目录监听已启用: 放入 inbox 的 .xlsx 将自动生成工资表")
	}

	// 构建地址
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	// 启动服务器
	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 打开浏览器
	switch {
	case cfg.Server.DevMode:
		fmt.Printf("开发模式: 请访问 %s\n", url)
	case cfg.Server.OpenBrowser:
		fmt.Printf("正在打开浏览器: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	default:
		fmt.Printf("请访问: %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("关闭服务失败: %v", err)
	}
}
