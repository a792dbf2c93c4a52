package handler

import (
	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/service"
	"gso-office/backend/pkg/response"
)

// MustGetCaller 读取 JWTAuth 注入的调用者身份，缺失时写入 401 并返回 false。
// unit_id 可以为空（GSO / Director / 申请人）。
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	caller := service.Caller{
		UserID: c.GetString("user_id"),
		Role:   c.GetString("role"),
		UnitID: c.GetString("unit_id"),
	}
	if caller.UserID == "" || caller.Role == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}
	return caller, true
}
