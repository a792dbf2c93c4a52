// Package response 统一 JSON 响应封装。
//
// 所有接口返回 {code, message, data, details, request_id}：code=0 表示成功，
// 其余为业务错误码（10xxx 通用，12xxx 目录，13xxx 库存，14xxx 服务申请，
// 15xxx 工作记录，16xxx 月度汇总，17xxx 导入，50000 内部错误）。
package response

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// RequestIDKey RequestID 中间件写入 gin.Context 的键
const RequestIDKey = "request_id"

// Response 统一响应结构
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Details   string      `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

func write(c *gin.Context, status int, body Response) {
	body.RequestID = c.GetString(RequestIDKey)
	c.JSON(status, body)
}

// ── 成功响应 ──

// OK 200
func OK(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Response{Message: "success", Data: data})
}

// Created 201
func Created(c *gin.Context, data interface{}) {
	write(c, http.StatusCreated, Response{Message: "success", Data: data})
}

// OKPage 200 分页；pageSize<=0 时视为 1 页
func OKPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	} else if total > 0 {
		totalPages = 1
	}
	OK(c, PageData{
		List: list,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// XLSX Excel 附件下载，文件名按 RFC 5987 编码
func XLSX(c *gin.Context, filename string, buf *bytes.Buffer) {
	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	write(c, httpStatus, Response{Code: code, Message: message})
}

// ErrorWithDetails 带详情的错误响应（如库存不足的具体物料）
func ErrorWithDetails(c *gin.Context, httpStatus int, code int, message, details string) {
	write(c, httpStatus, Response{Code: code, Message: message, Details: details})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409 乐观锁冲突
func Conflict(c *gin.Context) {
	Error(c, http.StatusConflict, 10006, "数据已被其他操作修改，请刷新后重试")
}

// TooLarge 413
func TooLarge(c *gin.Context) {
	Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
