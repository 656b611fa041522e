package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/PhilipDev237/opend/src/actor"
	"github.com/PhilipDev237/opend/src/api/middleware"
	"github.com/PhilipDev237/opend/src/common/errcode"
	"github.com/PhilipDev237/opend/src/common/principal"
	"github.com/PhilipDev237/opend/src/common/xhttp"
	"github.com/PhilipDev237/opend/src/common/xzap"
	"github.com/PhilipDev237/opend/src/service/item"
	"github.com/PhilipDev237/opend/src/service/session"
	"github.com/PhilipDev237/opend/src/service/v1"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// itemIDParam 解析路径中的 item principal
func itemIDParam(c *gin.Context) (principal.Principal, bool) {
	id, err := principal.Parse(c.Param("id"))
	if err != nil {
		xhttp.Error(c, errcode.NewCustomErr("Invalid item id."))
		return "", false
	}
	return id, true
}

// toErrCode 将 service 层错误映射为 API 错误码
func toErrCode(err error) *errcode.Err {
	var statusErr *item.StatusError
	switch {
	case errors.Is(err, item.ErrInvalidPrice):
		return errcode.NewCustomErr("Price must be a positive integer.")
	case errors.Is(err, item.ErrUnexpectedControl):
		return errcode.ErrConflict
	case errors.Is(err, item.ErrInsufficientFunds):
		return errcode.ErrInsufficient
	case errors.Is(err, item.ErrInFlight), errors.Is(err, session.ErrLocked):
		return errcode.ErrBusy
	case errors.As(err, &statusErr):
		return errcode.ErrRejected.WithMsg(statusErr.Status)
	case errors.Is(err, actor.ErrCallRejected):
		return errcode.ErrRejected
	case errors.Is(err, actor.ErrGatewayUnavailable):
		return errcode.ErrUnavailable
	case errors.Is(err, principal.ErrInvalidPrincipal):
		return errcode.ErrRejected.WithMsg("Canister returned an invalid principal.")
	case errors.Is(err, service.ErrActivityDisabled):
		return errcode.ErrNotFound.WithMsg("Item activity is disabled.")
	default:
		return errcode.ErrUnexpected
	}
}

// abortWithErr 记录错误并返回映射后的错误码
func abortWithErr(c *gin.Context, msg string, err error) {
	code := toErrCode(err)
	logger := xzap.WithContext(c.Request.Context()).With(
		zap.String("caller", middleware.GetCaller(c).Text()),
		zap.String("item", c.Param("id")),
		zap.Error(err))
	if code.HttpStatus >= 500 {
		logger.Error(msg)
	} else {
		logger.Warn(msg)
	}
	_ = c.Error(err)
	xhttp.Error(c, code)
}
