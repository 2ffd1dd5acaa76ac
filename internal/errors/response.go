package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 定义错误响应中的 error 对象
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// 错误码与HTTP状态码映射
var errorStatusMap = map[ErrorCode]int{
	// 系统错误 (1000-1999)
	ErrInternal:    http.StatusInternalServerError,
	ErrDatabase:    http.StatusInternalServerError,
	ErrTimeout:     http.StatusRequestTimeout,
	ErrConsistency: http.StatusConflict,

	// 认证错误 (2000-2999)
	ErrUnauthorized:       http.StatusUnauthorized,
	ErrForbidden:          http.StatusForbidden,
	ErrInvalidToken:       http.StatusUnauthorized,
	ErrInvalidCredentials: http.StatusUnauthorized,

	// 请求错误 (3000-3999)
	ErrBadRequest:       http.StatusBadRequest,
	ErrValidation:       http.StatusUnprocessableEntity,
	ErrResourceNotFound: http.StatusNotFound,
	ErrResourceExists:   http.StatusConflict,
}

// StatusOf 返回错误码对应的HTTP状态码
func StatusOf(code ErrorCode) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError 统一处理错误响应
// 对外只暴露状态类和消息，不泄露内部细节
func HandleError(c *gin.Context, err error) {
	if appErr, ok := err.(*AppError); ok {
		status := StatusOf(appErr.Code)
		c.Error(appErr)
		c.JSON(status, ErrorResponse{
			Error: ErrorBody{
				Code:    status,
				Message: appErr.Message,
			},
		})
		return
	}

	// 处理非 AppError 类型的错误
	c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: ErrorBody{
			Code:    http.StatusInternalServerError,
			Message: "Internal Server Error",
		},
	})
}
