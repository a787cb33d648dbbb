package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"storeshift_v1_202610/internal/app"
	"storeshift_v1_202610/internal/config"
	"storeshift_v1_202610/internal/logger"
	"storeshift_v1_202610/internal/router"
)

func main() {
	log := logger.GetLogger()

	// 1. 读取配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	// 2. 初始化依赖
	container, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer container.Close()

	// 3. 启动定时任务（默认关闭）
	if err := container.Tasks.Start(); err != nil {
		log.Fatalf("定时任务启动失败: %v", err)
	}
	defer container.Tasks.Stop()

	// 4. 初始化路由
	if err := router.RegisterValidators(); err != nil {
		log.Fatalf("注册校验规则失败: %v", err)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	router.InitRoutes(r, container.Controllers, container.RouterDeps())

	// 5. 启动服务
	startServer(r, cfg.ServerPort)
}

// ==================== 服务启动 ====================

// startServer 启动服务并等待退出信号
func startServer(r *gin.Engine, port string) {
	log := logger.GetLogger()

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 异步启动服务
	go func() {
		log.Infof("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("服务强制关闭: %v", err)
	}

	log.Info("服务已退出")
}
