package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/PhilipDev237/opend/src/common/errcode"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/common/xhttp"
)

// RateLimit 按调用者限制写操作频率, limit <= 0 时不限制
// 需放在 Identity 之后
func RateLimit(limit float64, burst int) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	var mu sync.Mutex
	limiters := make(map[principal.Principal]*rate.Limiter)

	return func(c *gin.Context) {
		caller := GetCaller(c)
		mu.Lock()
		l, ok := limiters[caller]
		if !ok {
			l = rate.NewLimiter(rate.Limit(limit), burst)
			limiters[caller] = l
		}
		mu.Unlock()

		if !l.Allow() {
			xhttp.Error(c, errcode.ErrTooMany)
			return
		}
		c.Next()
	}
}
