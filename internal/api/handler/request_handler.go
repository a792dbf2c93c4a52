package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/service"
	pkgerrors "gso-office/backend/pkg/errors"
	"gso-office/backend/pkg/response"
)

// RequestHandler 服务申请模块 HTTP 处理器
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler 创建 RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// ListRequests 获取申请列表（按角色限定可见范围）
// GET /api/v1/requests?status=&unit_id=&q=&page=&page_size=
func (h *RequestHandler) ListRequests(c *gin.Context) {
	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	req.Page, req.PageSize = req.GetPage(), req.GetPageSize()

	list, total, err := h.requestSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OKPage(c, list, total, req.Page, req.PageSize)
}

// GetRequest 获取申请详情
// GET /api/v1/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	sr, err := h.requestSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, sr)
}

// CreateRequest 提交服务申请
// POST /api/v1/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateServiceRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	sr, err := h.requestSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, sr)
}

// ListMyTasks 当前人员的未完成任务
// GET /api/v1/tasks/mine
func (h *RequestHandler) ListMyTasks(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.requestSvc.ListMyTasks(c.Request.Context(), caller)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ────────────────────── 状态流转 ──────────────────────

// Approve   POST   /api/v1/requests/:id/approve
// Cancel    POST   /api/v1/requests/:id/cancel
// Start     POST   /api/v1/requests/:id/start
// Reject    POST   /api/v1/requests/:id/reject
// Emergency POST   /api/v1/requests/:id/emergency
// Unflag    DELETE /api/v1/requests/:id/emergency
func (h *RequestHandler) Approve(c *gin.Context)   { h.transition(c, service.ActionApprove) }
func (h *RequestHandler) Cancel(c *gin.Context)    { h.transition(c, service.ActionCancel) }
func (h *RequestHandler) Start(c *gin.Context)     { h.transition(c, service.ActionStart) }
func (h *RequestHandler) Reject(c *gin.Context)    { h.transition(c, service.ActionRejectCompletion) }
func (h *RequestHandler) Emergency(c *gin.Context) { h.transition(c, service.ActionSetEmergency) }
func (h *RequestHandler) Unflag(c *gin.Context)    { h.transition(c, service.ActionUnsetEmergency) }

func (h *RequestHandler) transition(c *gin.Context, action string) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	sr, err := h.requestSvc.Transition(c.Request.Context(), caller, c.Param("id"), action)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, sr)
}

// MarkDone 人员标记完成，请求体可选
// POST /api/v1/requests/:id/done
func (h *RequestHandler) MarkDone(c *gin.Context) {
	var req dto.MarkDoneRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	sr, err := h.requestSvc.MarkDone(c.Request.Context(), caller, c.Param("id"), req.IndicatorID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, sr)
}

// Complete 单元负责人确认完成并生成工作记录
// POST /api/v1/requests/:id/complete
func (h *RequestHandler) Complete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	sr, err := h.requestSvc.ApproveCompletion(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, sr)
}

// ────────────────────── 指派与执行 ──────────────────────

// AssignPersonnel 指派人员（全量替换）
// PUT /api/v1/requests/:id/personnel
func (h *RequestHandler) AssignPersonnel(c *gin.Context) {
	var req dto.AssignPersonnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.requestSvc.AssignPersonnel(c.Request.Context(), caller, c.Param("id"), req.UserIDs)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, result)
}

// AssignMaterials 物料占用（全量替换，单事务）
// PUT /api/v1/requests/:id/materials
func (h *RequestHandler) AssignMaterials(c *gin.Context) {
	var req dto.AssignMaterialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	sr, err := h.requestSvc.AssignMaterials(c.Request.Context(), caller, c.Param("id"), req.Materials)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, sr)
}

// SelectIndicator 选择绩效指标
// PUT /api/v1/requests/:id/indicator
func (h *RequestHandler) SelectIndicator(c *gin.Context) {
	var req dto.SelectIndicatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	sr, err := h.requestSvc.SelectIndicator(c.Request.Context(), caller, c.Param("id"), req.IndicatorID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, sr)
}

// AddReport 提交执行记录
// POST /api/v1/requests/:id/reports
func (h *RequestHandler) AddReport(c *gin.Context) {
	var req dto.TaskReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	report, err := h.requestSvc.AddReport(c.Request.Context(), caller, c.Param("id"), req.ReportText)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, report)
}

// handleRequestError 统一处理服务申请模块业务错误
func (h *RequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 14001, "服务申请不存在")
	case errors.Is(err, service.ErrInvalidTransition):
		response.BadRequest(c, 14002, "当前状态不允许该操作")
	case errors.Is(err, service.ErrUnknownAction):
		response.BadRequest(c, 14003, "未知操作")
	case errors.Is(err, service.ErrPersonnelNotInUnit):
		response.BadRequest(c, 14004, "指派人员必须是该单元的在职人员")
	case errors.Is(err, service.ErrNotAssigned):
		response.Forbidden(c, 14005, "仅指派人员可执行该操作")
	case errors.Is(err, service.ErrEmptyReport):
		response.BadRequest(c, 14006, "执行记录不能为空")
	case errors.Is(err, service.ErrRequestClosed):
		response.BadRequest(c, 14007, "申请已结束，不可修改")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 14008, "申请部门不存在")
	case errors.Is(err, service.ErrInvalidScheduleSpan):
		response.BadRequest(c, 14009, "计划结束时间早于开始时间")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 14010, "指定用户不存在")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 12001, "服务单元不存在")
	case errors.Is(err, service.ErrIndicatorNotFound):
		response.NotFound(c, 12002, "绩效指标不存在")
	case errors.Is(err, service.ErrIndicatorUnitMismatch):
		response.BadRequest(c, 12004, "绩效指标不属于该单元")
	case errors.Is(err, service.ErrItemNotFound):
		response.NotFound(c, 13001, "物料不存在")
	case errors.Is(err, service.ErrItemNotOwned):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13004, "物料不属于该申请的服务单元", err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		response.ErrorWithDetails(c, http.StatusBadRequest, 13005, "库存不足", err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c)
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}
