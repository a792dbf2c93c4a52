package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gso-office/backend/pkg/response"
)

// BodyLimit 请求体大小限制中间件
// 声明的 Content-Length 超限时直接拒绝；未声明长度的请求在读取超限时由
// 处理器通过 c.Error 上报 *http.MaxBytesError，这里统一转换为 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.TooLarge(c)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()

		if c.Writer.Written() {
			return
		}
		var tooLarge *http.MaxBytesError
		for _, e := range c.Errors {
			if errors.As(e.Err, &tooLarge) {
				response.TooLarge(c)
				return
			}
		}
	}
}
