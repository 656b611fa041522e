package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/PhilipDev237/opend/src/common/metrics"
	"github.com/PhilipDev237/opend/src/common/xzap"
)

const HeaderTraceID = "X-Trace-ID"

// RLog 请求日志
// 1. 沿用请求头中的 trace id, 没有则生成, 并写回响应头
// 2. trace id 写入 request context, 下游日志通过 xzap.WithContext 带出
// 3. 请求结束后记录状态码与耗时, 同时上报 prometheus
func RLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Header(HeaderTraceID, traceID)
		c.Request = c.Request.WithContext(xzap.NewContext(c.Request.Context(), traceID))

		metrics.IncInFlight()
		defer metrics.DecInFlight()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		cost := time.Since(start)
		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), cost)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.String("ip", c.ClientIP()),
			zap.Duration("cost", cost),
		}
		if caller, ok := c.Get(CtxCallerKey); ok {
			fields = append(fields, zap.Any("caller", caller))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		xzap.WithContext(c.Request.Context()).Info("api access", fields...)
	}
}
