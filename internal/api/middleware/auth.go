package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gso-office/backend/pkg/jwt"
	"gso-office/backend/pkg/redis"
	"gso-office/backend/pkg/response"
)

// 上下文键，与 handler.MustGetCaller 对应
const (
	ctxUserID   = "user_id"
	ctxRole     = "role"
	ctxUnitID   = "unit_id"
	ctxTokenJTI = "token_jti"
)

func abortUnauthorized(c *gin.Context, message string) {
	response.Unauthorized(c, 10002, message)
	c.Abort()
}

// bearerToken 提取 Authorization: Bearer <token>
func bearerToken(c *gin.Context) (string, bool) {
	scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// JWTAuth 校验身份服务签发的 Access Token，并把 用户/角色/单元 注入上下文
// rdb 非空时检查 jti 黑名单；Redis 出错时降级放行
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			abortUnauthorized(c, "缺少认证头")
			return
		}
		raw, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "认证头格式无效")
			return
		}

		claims, err := jwtMgr.ParseToken(raw)
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}
		if claims.TokenType != "access" {
			abortUnauthorized(c, "Token 类型无效")
			return
		}

		if rdb != nil && claims.ID != "" {
			if revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && revoked {
				abortUnauthorized(c, "Token 已注销")
				return
			}
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxUnitID, claims.UnitID)
		c.Set(ctxTokenJTI, claims.ID)
		c.Next()
	}
}

// RoleAuth 要求当前用户具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			abortUnauthorized(c, "未认证")
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}
		c.Next()
	}
}
