package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/service"
	"gso-office/backend/pkg/response"
)

// ImportHandler Excel 迁移 HTTP 处理器
type ImportHandler struct {
	importSvc     service.ImportService
	maxUploadSize int64
}

// NewImportHandler 创建 ImportHandler；maxUploadSize<=0 时不限制
func NewImportHandler(importSvc service.ImportService, maxUploadSize int64) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, maxUploadSize: maxUploadSize}
}

// Import 上传 xlsx 并按迁移类型导入
// POST /api/v1/imports
//
// multipart/form-data: file=<xlsx>, migration_type=WORK_REPORT|INVENTORY|SERVICE_REQUEST|IPMT, unit_id=<可选>
func (h *ImportHandler) Import(c *gin.Context) {
	var req dto.ImportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 17001, "请上传 Excel 文件")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		response.BadRequest(c, 17002, "仅支持 .xlsx 文件")
		return
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		response.TooLarge(c)
		return
	}

	result, err := h.importSvc.Import(c.Request.Context(), caller, &req, header.Filename, file)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnsupportedMigration):
		response.BadRequest(c, 17003, "不支持的迁移类型")
	case errors.Is(err, service.ErrInvalidWorkbook):
		response.ErrorWithDetails(c, http.StatusBadRequest, 17004, "无法读取 Excel 文件", err.Error())
	case errors.Is(err, service.ErrEmptyWorkbook):
		response.BadRequest(c, 17005, "Excel 文件没有数据行")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 12001, "服务单元不存在")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}
