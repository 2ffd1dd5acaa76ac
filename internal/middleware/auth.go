package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hcissey0/flux-backend/internal/errors"
	"github.com/hcissey0/flux-backend/internal/service"
	"github.com/hcissey0/flux-backend/internal/util"
	"go.uber.org/zap"
)

// AuthMiddleware 解析 Bearer 令牌并把当前用户注入请求上下文
// 已注销的令牌在签名校验前先被黑名单拦截
func AuthMiddleware(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Invalid authorization header"))
			c.Abort()
			return
		}

		revoked, _ := userService.IsTokenRevoked(parts[1])
		if revoked {
			errors.HandleError(c, errors.New(errors.ErrInvalidToken, "Token has been revoked"))
			c.Abort()
			return
		}

		userID, err := util.ValidateToken(parts[1])
		if err != nil {
			errors.HandleError(c, errors.Wrap(errors.ErrInvalidToken, "Invalid or expired token", err))
			c.Abort()
			return
		}

		user, err := userService.GetUserByID(userID)
		if err != nil {
			util.Logger.Warn("令牌有效但用户不存在", zap.String("user_id", userID))
			errors.HandleError(c, errors.New(errors.ErrUnauthorized, "Authentication required"))
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("current_user", user)
		c.Set("token", parts[1])

		select {
		case <-ctx.Done():
			errors.HandleError(c, errors.New(errors.ErrTimeout, "Request timed out"))
			c.Abort()
			return
		default:
			c.Next()
		}
	}
}
