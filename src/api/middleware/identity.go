package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/PhilipDev237/opend/src/common/errcode"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/common/xhttp"
)

const (
	HeaderPrincipal = "X-Principal"
	CtxCallerKey    = "caller"
)

// Identity 解析调用者 principal
// 请求头 X-Principal 优先, 缺省时使用配置的默认身份, 两者都没有则返回 401
func Identity(defaultCaller principal.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		text := c.GetHeader(HeaderPrincipal)
		if text == "" {
			if defaultCaller == "" {
				xhttp.Error(c, errcode.ErrUnauthorized)
				return
			}
			c.Set(CtxCallerKey, defaultCaller)
			c.Next()
			return
		}

		caller, err := principal.Parse(text)
		if err != nil {
			xhttp.Error(c, errcode.ErrUnauthorized.WithMsg("Invalid caller principal."))
			return
		}
		c.Set(CtxCallerKey, caller)
		c.Next()
	}
}

// GetCaller 读取 Identity 写入的调用者
func GetCaller(c *gin.Context) principal.Principal {
	v, ok := c.Get(CtxCallerKey)
	if !ok {
		return ""
	}
	caller, _ := v.(principal.Principal)
	return caller
}
