package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PhilipDev237/opend/src/common/errcode"
	"github.com/PhilipDev237/opend/src/common/xhttp"
	"github.com/PhilipDev237/opend/src/common/xzap"
)

// RecoverMiddleware 捕获 handler 中的 panic, 记录堆栈并返回 500
func RecoverMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				xzap.WithContext(c.Request.Context()).Error("panic recovered",
					zap.String("path", c.Request.URL.Path),
					zap.String("panic", fmt.Sprint(r)),
					zap.ByteString("stack", debug.Stack()))
				xhttp.Error(c, errcode.ErrUnexpected)
			}
		}()
		c.Next()
	}
}
