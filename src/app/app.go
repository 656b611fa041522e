package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/PhilipDev237/opend/src/common/xzap"
	"github.com/PhilipDev237/opend/src/config"
	"github.com/PhilipDev237/opend/src/service/svc"
)

const shutdownTimeout = 10 * time.Second

// Platform 平台结构体，作为整个应用程序的容器
type Platform struct {
	config    *config.Config
	router    *gin.Engine
	serverCtx *svc.ServerCtx
	server    *http.Server
}

// NewPlatform 创建一个新的 Platform 实例
func NewPlatform(config *config.Config, router *gin.Engine, serverCtx *svc.ServerCtx) (*Platform, error) {
	return &Platform{
		config:    config,
		router:    router,
		serverCtx: serverCtx,
		server: &http.Server{
			Addr:              config.Api.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Start 启动平台服务
// 1. 探测 canister 网关, 本地部署时拉取 root key
// 2. 启动 HTTP 服务, 阻塞直到 ctx 取消或服务出错
// 3. ctx 取消后在 shutdownTimeout 内等待处理中的请求完成
func (p *Platform) Start(ctx context.Context) error {
	if p.serverCtx.Agent != nil {
		if err := p.serverCtx.Agent.Start(ctx, p.config.Agent.FetchRootKey); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		xzap.WithContext(ctx).Info("OpenD api run", zap.String("port", p.config.Api.Port))
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, "failed on serve http")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := p.server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed on shutdown http server")
	}
	xzap.WithContext(ctx).Info("OpenD api stopped")
	return nil
}
