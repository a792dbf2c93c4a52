package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gso-office/backend/pkg/redis"
	"gso-office/backend/pkg/response"
)

// RateLimit 基于 Redis 固定窗口计数的限流中间件，按 客户端 IP + 路由 计数
// limit<=0 或 rdb 为 nil 时不限流；Redis 出错时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "rate_limit:" + c.ClientIP() + ":" + c.FullPath()
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
