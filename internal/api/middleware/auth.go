package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/quickcart/internal/auth"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/pkg/response"
)

const (
	ctxUserID = "auth.user_id"
	ctxRole   = "auth.role"
)

// Auth 校验 Bearer 令牌并把用户 id 与角色写入上下文
func Auth(tokens *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.Unauthorized(c, "not authorized, no token")
			c.Abort()
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			response.Unauthorized(c, "not authorized, token failed")
			c.Abort()
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

// RequireRole 只放行给定角色；ADMIN 与 SUPER_ADMIN 视为同一级
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := CurrentRole(c)
		for _, r := range roles {
			if role == r || (r.IsAdmin() && role.IsAdmin()) {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "not authorized for this resource")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc { return RequireRole(model.RoleAdmin) }

func DriverOnly() gin.HandlerFunc { return RequireRole(model.RoleDriver) }

// CurrentUserID 由 Auth 写入；未认证时为空串
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func CurrentRole(c *gin.Context) model.Role {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(model.Role); ok {
			return r
		}
	}
	return ""
}
