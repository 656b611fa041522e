package xhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/PhilipDev237/opend/src/common/errcode"
)

// Response 统一返回结构
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

// OkJson 返回成功结果
func OkJson(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: errcode.CodeOK,
		Msg:  "Successful",
		Data: data,
	})
}

// Error 返回错误结果
// errcode.Err 按其错误码与 HTTP 状态返回, 其余错误统一视为 ErrUnexpected
func Error(c *gin.Context, err error) {
	var e *errcode.Err
	if !errors.As(err, &e) {
		e = errcode.ErrUnexpected
	}

	c.AbortWithStatusJSON(e.HttpStatus, Response{
		Code: e.Code,
		Msg:  e.Msg,
	})
}
