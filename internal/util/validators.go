package util

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateNotBlank 校验字符串去除空白后非空
// 帖子、评论和消息的正文都要求有实际内容
func ValidateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
