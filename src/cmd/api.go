package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" // 引入 pprof 用于性能分析
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/PhilipDev237/opend/src/api/router"
	"github.com/PhilipDev237/opend/src/app"
	"github.com/PhilipDev237/opend/src/common/xzap"
	"github.com/PhilipDev237/opend/src/config"
	"github.com/PhilipDev237/opend/src/service/svc"
)

// ApiCmd 定义了 "api" 子命令
var ApiCmd = &cobra.Command{
	Use:   "api",
	Short: "run opend http api.",
	Long:  "run opend http api.",
	Run: func(cmd *cobra.Command, args []string) {
		wg := &sync.WaitGroup{}
		wg.Add(1)

		// 创建一个带有取消功能的 Context，用于优雅退出
		ctx, cancel := context.WithCancel(context.Background())

		// 服务退出信号通知chan
		onApiExit := make(chan error, 1)

		go func() {
			defer wg.Done()

			// 1. 读取和解析配置文件 (config.toml)
			c, err := config.UnmarshalConfig(cfgFile)
			if err != nil {
				onApiExit <- err
				return
			}

			// 2. 初始化服务上下文, 包含日志, Redis, 数据库与 canister 网关
			serverCtx, err := svc.NewServiceContext(c)
			if err != nil {
				onApiExit <- err
				return
			}
			xzap.WithContext(ctx).Info("api server start", zap.Any("config", c))

			// 3. 如果配置开启了 Pprof，启动 HTTP 服务进行性能监控
			if c.Monitor != nil && c.Monitor.PprofEnable {
				go func() {
					addr := fmt.Sprintf("0.0.0.0:%d", c.Monitor.PprofPort)
					if err := http.ListenAndServe(addr, nil); err != nil {
						xzap.WithContext(ctx).Warn("pprof server exit", zap.Error(err))
					}
				}()
			}

			// 4. 初始化路由并启动, 阻塞直到 ctx 取消
			r := router.NewRouter(serverCtx)
			platform, err := app.NewPlatform(c, r, serverCtx)
			if err != nil {
				onApiExit <- err
				return
			}
			onApiExit <- platform.Start(ctx)
		}()

		// 监听 SIGINT (Ctrl+C) 和 SIGTERM (kill) 信号，实现优雅退出
		onSignal := make(chan os.Signal, 1)
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)

		var exitErr error
		select {
		case sig := <-onSignal:
			xzap.WithContext(ctx).Info("Exit by signal", zap.String("signal", sig.String()))
		case exitErr = <-onApiExit:
			if exitErr != nil {
				xzap.WithContext(ctx).Error("Exit by error", zap.Error(exitErr))
			}
		}
		cancel()

		// 等待所有 goroutine 退出
		wg.Wait()
		if exitErr != nil {
			fmt.Fprintln(os.Stderr, exitErr)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ApiCmd)
}
