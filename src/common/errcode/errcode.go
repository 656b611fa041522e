package errcode

import (
	"fmt"
	"net/http"
)

// Err API 层错误, 携带业务错误码与对应的 HTTP 状态码
type Err struct {
	Code       int    `json:"code"`
	Msg        string `json:"msg"`
	HttpStatus int    `json:"-"`
}

func (e *Err) Error() string {
	return fmt.Sprintf("code: %d, msg: %s", e.Code, e.Msg)
}

// NewErr 创建一个错误码
func NewErr(code int, httpStatus int, msg string) *Err {
	return &Err{Code: code, Msg: msg, HttpStatus: httpStatus}
}

// NewCustomErr 自定义提示信息的参数错误
func NewCustomErr(msg string) *Err {
	return &Err{Code: CodeCustom, Msg: msg, HttpStatus: http.StatusBadRequest}
}

// WithMsg 复制错误码并替换提示信息
func (e *Err) WithMsg(msg string) *Err {
	return &Err{Code: e.Code, Msg: msg, HttpStatus: e.HttpStatus}
}

const (
	CodeOK           = 200
	CodeCustom       = 10000
	CodeInvalidParam = 10001
	CodeUnauthorized = 10002
	CodeNotFound     = 10003
	CodeConflict     = 10004
	CodeBusy         = 10005
	CodeTooMany      = 10006
	CodeInsufficient = 10007
	CodeRejected     = 20001
	CodeUnavailable  = 20002
	CodeUnexpected   = 50000
)

var (
	ErrInvalidParams = NewErr(CodeInvalidParam, http.StatusBadRequest, "Invalid params.")
	ErrUnauthorized  = NewErr(CodeUnauthorized, http.StatusUnauthorized, "Caller principal required.")
	ErrNotFound      = NewErr(CodeNotFound, http.StatusNotFound, "Not found.")
	ErrConflict      = NewErr(CodeConflict, http.StatusConflict, "Action not available for this item.")
	ErrBusy          = NewErr(CodeBusy, http.StatusConflict, "Item is being processed, try again later.")
	ErrTooMany       = NewErr(CodeTooMany, http.StatusTooManyRequests, "Too many requests.")
	ErrInsufficient  = NewErr(CodeInsufficient, http.StatusBadRequest, "Insufficient funds.")
	ErrRejected      = NewErr(CodeRejected, http.StatusBadGateway, "Canister rejected the call.")
	ErrUnavailable   = NewErr(CodeUnavailable, http.StatusBadGateway, "Canister gateway unavailable.")
	ErrUnexpected    = NewErr(CodeUnexpected, http.StatusInternalServerError, "Unexpected error.")
)
