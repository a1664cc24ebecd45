package common

import (
	"errors"
	"net/http"

	"github.com/anoixa/photo-share/internal/apperr"
	"github.com/anoixa/photo-share/utils"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status string      `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

func Respond(c *gin.Context, httpStatus int, status string, message string, data interface{}) {
	c.JSON(httpStatus, Response{
		Status: status,
		Msg:    message,
		Data:   data,
	})
}

// RespondSuccess sends a success response with data.
func RespondSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, "success", "", data)
}

// RespondSuccessMessage sends a success response with message and data.
func RespondSuccessMessage(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusOK, "success", message, data)
}

// RespondAccepted 异步任务已受理
func RespondAccepted(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusAccepted, "accepted", message, data)
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, "error", message, nil)
}

// RespondErrorAbort 返回错误并终止后续中间件
func RespondErrorAbort(c *gin.Context, httpStatus int, message string) {
	RespondError(c, httpStatus, message)
	c.Abort()
}

// StatusOf 错误类型到 HTTP 状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrExternal):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondErr 按错误类型返回，5xx 错误只暴露通用信息
func RespondErr(c *gin.Context, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		log := utils.Component("api")
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	if utils.IsClientDisconnect(err) {
		c.Abort()
		return
	}
	if status == http.StatusInternalServerError {
		RespondError(c, status, "internal server error")
		return
	}
	RespondError(c, status, apperr.Message(err))
}
