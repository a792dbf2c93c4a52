package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gso-office/backend/pkg/response"
)

const (
	requestIDKey    = response.RequestIDKey
	requestIDHeader = "X-Request-ID"
	// requestIDMaxLen 外部传入 ID 的长度上限
	requestIDMaxLen = 64
)

// RequestID 请求追踪 ID 中间件
// 沿用上游 X-Request-ID（仅允许可打印 ASCII），否则生成 UUID；
// 写入 gin.Context 供日志与错误响应引用，并回写响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}

		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

func validRequestID(rid string) bool {
	if rid == "" || len(rid) > requestIDMaxLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		if rid[i] < 0x21 || rid[i] > 0x7e {
			return false
		}
	}
	return true
}
