package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"gso-office/backend/internal/dto"
	"gso-office/backend/internal/service"
	pkgerrors "gso-office/backend/pkg/errors"
	"gso-office/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock RequestService ──

type mockRequestService struct {
	result     *dto.ServiceRequestResponse
	err        error
	list       []dto.ServiceRequestResponse
	total      int64
	assign     *dto.AssignPersonnelResponse
	report     *dto.TaskReportResponse
	lastAction string
	lastCaller service.Caller
	lastListed *dto.RequestListRequest
	lastIndID  string
	lastAlloc  []dto.MaterialAllocation
}

func (m *mockRequestService) Create(_ context.Context, caller service.Caller, _ *dto.CreateServiceRequestRequest) (*dto.ServiceRequestResponse, error) {
	m.lastCaller = caller
	return m.result, m.err
}
func (m *mockRequestService) GetByID(_ context.Context, caller service.Caller, _ string) (*dto.ServiceRequestResponse, error) {
	m.lastCaller = caller
	return m.result, m.err
}
func (m *mockRequestService) List(_ context.Context, caller service.Caller, req *dto.RequestListRequest) ([]dto.ServiceRequestResponse, int64, error) {
	m.lastCaller = caller
	m.lastListed = req
	return m.list, m.total, m.err
}
func (m *mockRequestService) ListMyTasks(_ context.Context, caller service.Caller) ([]dto.ServiceRequestResponse, error) {
	m.lastCaller = caller
	return m.list, m.err
}
func (m *mockRequestService) Transition(_ context.Context, caller service.Caller, _, action string) (*dto.ServiceRequestResponse, error) {
	m.lastCaller = caller
	m.lastAction = action
	return m.result, m.err
}
func (m *mockRequestService) MarkDone(_ context.Context, _ service.Caller, _, indicatorID string) (*dto.ServiceRequestResponse, error) {
	m.lastIndID = indicatorID
	return m.result, m.err
}
func (m *mockRequestService) ApproveCompletion(_ context.Context, _ service.Caller, _ string) (*dto.ServiceRequestResponse, error) {
	return m.result, m.err
}
func (m *mockRequestService) AssignPersonnel(_ context.Context, _ service.Caller, _ string, _ []string) (*dto.AssignPersonnelResponse, error) {
	return m.assign, m.err
}
func (m *mockRequestService) AssignMaterials(_ context.Context, _ service.Caller, _ string, alloc []dto.MaterialAllocation) (*dto.ServiceRequestResponse, error) {
	m.lastAlloc = alloc
	return m.result, m.err
}
func (m *mockRequestService) AddReport(_ context.Context, _ service.Caller, _, _ string) (*dto.TaskReportResponse, error) {
	return m.report, m.err
}
func (m *mockRequestService) SelectIndicator(_ context.Context, _ service.Caller, _, indicatorID string) (*dto.ServiceRequestResponse, error) {
	m.lastIndID = indicatorID
	return m.result, m.err
}

// ── Mock RollupService / ExportService ──

type mockRollupService struct {
	preview   *dto.RollupPreviewResponse
	save      *dto.SaveRollupResponse
	entries   []dto.RollupEntryResponse
	err        error
	lastQuery  *dto.RollupQuery
	lastCaller service.Caller
}

func (m *mockRollupService) Aggregate(_ context.Context, caller service.Caller, q *dto.RollupQuery) (*dto.RollupPreviewResponse, error) {
	m.lastCaller = caller
	m.lastQuery = q
	return m.preview, m.err
}
func (m *mockRollupService) Upsert(_ context.Context, caller service.Caller, _ *dto.SaveRollupRequest) (*dto.SaveRollupResponse, error) {
	m.lastCaller = caller
	return m.save, m.err
}
func (m *mockRollupService) ListEntries(_ context.Context, caller service.Caller, _ *dto.RollupEntryQuery) ([]dto.RollupEntryResponse, error) {
	m.lastCaller = caller
	return m.entries, m.err
}

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportRollup(_ context.Context, _ service.Caller, _ *dto.ExportRollupRequest) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ── Mock ImportService ──

type mockImportService struct {
	result   *dto.ImportResult
	err      error
	fileName string
	body     []byte
	req      *dto.ImportRequest
}

func (m *mockImportService) Import(_ context.Context, _ service.Caller, req *dto.ImportRequest, fileName string, r io.Reader) (*dto.ImportResult, error) {
	m.req = req
	m.fileName = fileName
	m.body, _ = io.ReadAll(r)
	return m.result, m.err
}

// ── Mock AccomplishmentService ──

type mockAccomplishmentService struct {
	list   []dto.NormalizedReport
	report *dto.NormalizedReport
	desc   *dto.DescriptionResponse
	err    error
}

func (m *mockAccomplishmentService) ListReports(_ context.Context, _ service.Caller, _ *dto.ReportListRequest) ([]dto.NormalizedReport, error) {
	return m.list, m.err
}
func (m *mockAccomplishmentService) GetReport(_ context.Context, _ string) (*dto.NormalizedReport, error) {
	return m.report, m.err
}
func (m *mockAccomplishmentService) UpdateIndicator(_ context.Context, _ service.Caller, _, _ string) (*dto.NormalizedReport, error) {
	return m.report, m.err
}
func (m *mockAccomplishmentService) UpdateDescription(_ context.Context, _ service.Caller, _, _ string) (*dto.NormalizedReport, error) {
	return m.report, m.err
}
func (m *mockAccomplishmentService) GetDescription(_ context.Context, _ string) (*dto.DescriptionResponse, error) {
	return m.desc, m.err
}

// ── Mock CatalogService ──

type mockCatalogService struct {
	units     []dto.UnitResponse
	personnel []dto.PersonnelResponse
	indicator *dto.IndicatorResponse
	err       error
}

func (m *mockCatalogService) ListUnits(_ context.Context) ([]dto.UnitResponse, error) {
	return m.units, m.err
}
func (m *mockCatalogService) ListDepartments(_ context.Context) ([]dto.DepartmentResponse, error) {
	return nil, m.err
}
func (m *mockCatalogService) ListPersonnel(_ context.Context, _ string) ([]dto.PersonnelResponse, error) {
	return m.personnel, m.err
}
func (m *mockCatalogService) ListIndicators(_ context.Context, _ *dto.IndicatorListRequest) ([]dto.IndicatorResponse, error) {
	return nil, m.err
}
func (m *mockCatalogService) CreateIndicator(_ context.Context, _ service.Caller, _ *dto.CreateIndicatorRequest) (*dto.IndicatorResponse, error) {
	return m.indicator, m.err
}
func (m *mockCatalogService) UpdateIndicator(_ context.Context, _ service.Caller, _ string, _ *dto.UpdateIndicatorRequest) (*dto.IndicatorResponse, error) {
	return m.indicator, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

const (
	testUnitID      = "8b1f3c2e-5d4a-4f6b-9c8d-7e6f5a4b3c2d"
	testIndicatorID = "1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d"
	testItemID      = "9f8e7d6c-5b4a-4c3d-2e1f-0a9b8c7d6e5f"
)

func setAuth(c *gin.Context) {
	c.Set("user_id", "test-user-id")
	c.Set("role", "unit_head")
	c.Set("unit_id", testUnitID)
}

// serve 注册单个路由（先注入身份）并执行请求
func serve(method, path, pattern string, body io.Reader, h gin.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	r := gin.New()
	r.Handle(method, pattern, func(c *gin.Context) {
		setAuth(c)
		h(c)
	})
	r.ServeHTTP(w, req)
	return w
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// Context Helper Tests
// ═══════════════════════════════════════════════════════════

func TestMustGetCaller_Unauthenticated(t *testing.T) {
	h := NewRequestHandler(&mockRequestService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/tasks/mine", nil)
	r := gin.New()
	r.GET("/tasks/mine", h.ListMyTasks)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestMustGetCaller_InjectsIdentity(t *testing.T) {
	mock := &mockRequestService{}
	h := NewRequestHandler(mock)

	w := serve("GET", "/tasks/mine", "/tasks/mine", nil, h.ListMyTasks)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	want := service.Caller{UserID: "test-user-id", Role: "unit_head", UnitID: testUnitID}
	if mock.lastCaller != want {
		t.Errorf("expected caller %+v, got %+v", want, mock.lastCaller)
	}
}

// ═══════════════════════════════════════════════════════════
// RequestHandler Tests
// ═══════════════════════════════════════════════════════════

func TestRequestHandler_ListRequests_Pagination(t *testing.T) {
	mock := &mockRequestService{
		list:  []dto.ServiceRequestResponse{{ID: "r1"}, {ID: "r2"}},
		total: 45,
	}
	h := NewRequestHandler(mock)

	w := serve("GET", "/requests?status=Pending", "/requests", nil, h.ListRequests)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.lastListed.Page != 1 || mock.lastListed.PageSize != 20 || mock.lastListed.Status != "Pending" {
		t.Errorf("unexpected list request: %+v", mock.lastListed)
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Total != 45 || body.Data.Pagination.TotalPages != 3 {
		t.Errorf("unexpected pagination: %+v", body.Data.Pagination)
	}
}

func TestRequestHandler_ListRequests_BadPageSize(t *testing.T) {
	h := NewRequestHandler(&mockRequestService{})

	w := serve("GET", "/requests?page_size=500", "/requests", nil, h.ListRequests)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRequestHandler_Transitions(t *testing.T) {
	tests := []struct {
		method, pattern string
		handler         func(h *RequestHandler) gin.HandlerFunc
		want            string
	}{
		{"POST", "/requests/:id/approve", func(h *RequestHandler) gin.HandlerFunc { return h.Approve }, service.ActionApprove},
		{"POST", "/requests/:id/cancel", func(h *RequestHandler) gin.HandlerFunc { return h.Cancel }, service.ActionCancel},
		{"POST", "/requests/:id/start", func(h *RequestHandler) gin.HandlerFunc { return h.Start }, service.ActionStart},
		{"POST", "/requests/:id/reject", func(h *RequestHandler) gin.HandlerFunc { return h.Reject }, service.ActionRejectCompletion},
		{"POST", "/requests/:id/emergency", func(h *RequestHandler) gin.HandlerFunc { return h.Emergency }, service.ActionSetEmergency},
		{"DELETE", "/requests/:id/emergency", func(h *RequestHandler) gin.HandlerFunc { return h.Unflag }, service.ActionUnsetEmergency},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			mock := &mockRequestService{result: &dto.ServiceRequestResponse{ID: "r1"}}
			h := NewRequestHandler(mock)

			path := strings.Replace(tt.pattern, ":id", "r1", 1)
			w := serve(tt.method, path, tt.pattern, nil, tt.handler(h))

			if w.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", w.Code)
			}
			if mock.lastAction != tt.want {
				t.Errorf("expected action %s, got %s", tt.want, mock.lastAction)
			}
		})
	}
}

func TestRequestHandler_MarkDone_OptionalBody(t *testing.T) {
	mock := &mockRequestService{result: &dto.ServiceRequestResponse{ID: "r1"}}
	h := NewRequestHandler(mock)

	w := serve("POST", "/requests/r1/done", "/requests/:id/done", nil, h.MarkDone)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 without body, got %d", w.Code)
	}

	w = serve("POST", "/requests/r1/done", "/requests/:id/done",
		jsonBody(dto.MarkDoneRequest{IndicatorID: testIndicatorID}), h.MarkDone)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if mock.lastIndID != testIndicatorID {
		t.Errorf("expected indicator %s, got %s", testIndicatorID, mock.lastIndID)
	}

	w = serve("POST", "/requests/r1/done", "/requests/:id/done", jsonBody(map[string]string{"indicator_id": "bad"}), h.MarkDone)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-uuid indicator, got %d", w.Code)
	}
}

func TestRequestHandler_AssignMaterials_InsufficientStock(t *testing.T) {
	stockErr := fmt.Errorf("%w: Cement (available 5, requested 10)", service.ErrInsufficientStock)
	mock := &mockRequestService{err: stockErr}
	h := NewRequestHandler(mock)

	w := serve("PUT", "/requests/r1/materials", "/requests/:id/materials",
		jsonBody(dto.AssignMaterialsRequest{Materials: []dto.MaterialAllocation{{ItemID: testItemID, Quantity: 10}}}), h.AssignMaterials)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 13005 {
		t.Errorf("expected code 13005, got %d", resp.Code)
	}
	if !strings.Contains(resp.Details, "available 5, requested 10") {
		t.Errorf("expected stock details, got %q", resp.Details)
	}
	if len(mock.lastAlloc) != 1 || mock.lastAlloc[0].Quantity != 10 {
		t.Errorf("allocations not forwarded: %+v", mock.lastAlloc)
	}
}

func TestRequestHandler_AssignPersonnel_Warnings(t *testing.T) {
	mock := &mockRequestService{assign: &dto.AssignPersonnelResponse{
		Request:      &dto.ServiceRequestResponse{ID: "r1"},
		BusyWarnings: []string{"Juan Dela Cruz is currently busy with 2 task(s)."},
	}}
	h := NewRequestHandler(mock)

	w := serve("PUT", "/requests/r1/personnel", "/requests/:id/personnel",
		jsonBody(dto.AssignPersonnelRequest{UserIDs: []string{testItemID}}), h.AssignPersonnel)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "currently busy with 2 task(s)") {
		t.Errorf("expected busy warning in body: %s", w.Body.String())
	}
}

func TestRequestHandler_AddReport_Created(t *testing.T) {
	mock := &mockRequestService{report: &dto.TaskReportResponse{ID: "rep-1"}}
	h := NewRequestHandler(mock)

	w := serve("POST", "/requests/r1/reports", "/requests/:id/reports",
		jsonBody(dto.TaskReportRequest{ReportText: "Replaced filter"}), h.AddReport)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestRequestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrRequestNotFound, 404, 14001},
		{"InvalidTransition", service.ErrInvalidTransition, 400, 14002},
		{"NotAssigned", service.ErrNotAssigned, 403, 14005},
		{"Closed", service.ErrRequestClosed, 400, 14007},
		{"PersonnelNotInUnit", service.ErrPersonnelNotInUnit, 400, 14004},
		{"IndicatorMismatch", service.ErrIndicatorUnitMismatch, 400, 12004},
		{"ItemNotOwned", fmt.Errorf("%w: Paint", service.ErrItemNotOwned), 400, 13004},
		{"OptimisticLock", pkgerrors.ErrOptimisticLock, 409, 10006},
		{"Forbidden", service.ErrForbidden, 403, 10003},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRequestHandler(&mockRequestService{err: tt.err})

			w := serve("GET", "/requests/r1", "/requests/:id", nil, h.GetRequest)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// RollupHandler Tests
// ═══════════════════════════════════════════════════════════

func TestRollupHandler_Preview(t *testing.T) {
	mock := &mockRollupService{preview: &dto.RollupPreviewResponse{Period: "2025-09", Unit: "Maintenance"}}
	h := NewRollupHandler(mock, &mockExportService{})

	w := serve("GET", "/rollups/preview?period=2025-09&unit=Maintenance&personnel=jdelacruz&personnel=msantos",
		"/rollups/preview", nil, h.Preview)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(mock.lastQuery.Personnel) != 2 || mock.lastQuery.Personnel[1] != "msantos" {
		t.Errorf("personnel tokens not bound: %+v", mock.lastQuery)
	}
	if mock.lastCaller.UnitID != testUnitID || mock.lastCaller.Role != "unit_head" {
		t.Errorf("caller not passed through: %+v", mock.lastCaller)
	}
}

func TestRollupHandler_Preview_MissingPeriod(t *testing.T) {
	h := NewRollupHandler(&mockRollupService{}, &mockExportService{})

	w := serve("GET", "/rollups/preview?unit=Maintenance", "/rollups/preview", nil, h.Preview)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestRollupHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"InvalidPeriod", service.ErrInvalidPeriod, 400, 16001},
		{"UnitNotFound", service.ErrUnitNotFound, 404, 12001},
		{"OtherUnit", service.ErrForbidden, 403, 10003},
		{"InternalError", errors.New("db down"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRollupHandler(&mockRollupService{err: tt.err}, &mockExportService{})

			w := serve("GET", "/rollups?period=2025-09&unit=Maintenance", "/rollups", nil, h.ListEntries)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestRollupHandler_Export_Success(t *testing.T) {
	mock := &mockExportService{
		buf:      bytes.NewBufferString("excel content"),
		filename: "IPMT_Maintenance_2025-09.xlsx",
	}
	h := NewRollupHandler(&mockRollupService{}, mock)

	w := serve("POST", "/rollups/export", "/rollups/export",
		jsonBody(dto.ExportRollupRequest{Period: "2025-09", Unit: "Maintenance"}), h.Export)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "IPMT_Maintenance_2025-09.xlsx") {
		t.Errorf("unexpected Content-Disposition: %s", cd)
	}
	if w.Body.String() != "excel content" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestRollupHandler_Save_ForbiddenUnit(t *testing.T) {
	mock := &mockRollupService{err: service.ErrForbidden}
	h := NewRollupHandler(mock, &mockExportService{})

	w := serve("POST", "/rollups", "/rollups",
		jsonBody(dto.SaveRollupRequest{Period: "2025-09", Unit: "Grounds", Personnel: []string{"all"},
			Rows: []dto.RollupRow{{Indicator: "Landscaping", Description: "Mowed"}}}), h.Save)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if mock.lastCaller.UserID != "test-user-id" {
		t.Errorf("caller not passed through: %+v", mock.lastCaller)
	}
}

func TestRollupHandler_Export_GenerateFail(t *testing.T) {
	h := NewRollupHandler(&mockRollupService{}, &mockExportService{err: service.ErrExportGenerateFail})

	w := serve("POST", "/rollups/export", "/rollups/export",
		jsonBody(dto.ExportRollupRequest{Period: "2025-09", Unit: "Maintenance"}), h.Export)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ImportHandler Tests
// ═══════════════════════════════════════════════════════════

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(content)
	}
	mw.Close()
	return body, mw.FormDataContentType()
}

func serveImport(h *ImportHandler, body io.Reader, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/imports", body)
	req.Header.Set("Content-Type", contentType)

	r := gin.New()
	r.POST("/imports", func(c *gin.Context) {
		setAuth(c)
		h.Import(c)
	})
	r.ServeHTTP(w, req)
	return w
}

func TestImportHandler_Success(t *testing.T) {
	mock := &mockImportService{result: &dto.ImportResult{Imported: 3, Message: "3 records imported successfully."}}
	h := NewImportHandler(mock, 1<<20)

	body, ct := multipartBody(t, map[string]string{"migration_type": "WORK_REPORT"}, "war.xlsx", []byte("PK-fake"))
	w := serveImport(h, body, ct)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if mock.fileName != "war.xlsx" || string(mock.body) != "PK-fake" || mock.req.MigrationType != "WORK_REPORT" {
		t.Errorf("upload not forwarded: file=%s body=%q req=%+v", mock.fileName, mock.body, mock.req)
	}
}

func TestImportHandler_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		fileName   string
		maxSize    int64
		wantStatus int
		wantCode   int
	}{
		{"UnknownType", map[string]string{"migration_type": "PAYROLL"}, "a.xlsx", 1 << 20, 400, 10001},
		{"MissingFile", map[string]string{"migration_type": "INVENTORY"}, "", 1 << 20, 400, 17001},
		{"WrongExtension", map[string]string{"migration_type": "INVENTORY"}, "a.csv", 1 << 20, 400, 17002},
		{"TooLarge", map[string]string{"migration_type": "INVENTORY"}, "a.xlsx", 2, 413, 10005},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewImportHandler(&mockImportService{}, tt.maxSize)
			body, ct := multipartBody(t, tt.fields, tt.fileName, []byte("content"))

			w := serveImport(h, body, ct)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestImportHandler_InvalidWorkbook(t *testing.T) {
	h := NewImportHandler(&mockImportService{err: fmt.Errorf("%w: zip: not a valid zip file", service.ErrInvalidWorkbook)}, 0)

	body, ct := multipartBody(t, map[string]string{"migration_type": "IPMT"}, "a.xlsx", []byte("garbage"))
	w := serveImport(h, body, ct)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 17004 || resp.Details == "" {
		t.Errorf("expected code 17004 with details, got %+v", resp)
	}
}

// ═══════════════════════════════════════════════════════════
// AccomplishmentHandler / CatalogHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAccomplishmentHandler_GetDescription_Pending(t *testing.T) {
	mock := &mockAccomplishmentService{desc: &dto.DescriptionResponse{ID: "rec-1", Description: service.DescriptionPlaceholder, Pending: true}}
	h := NewAccomplishmentHandler(mock)

	w := serve("GET", "/accomplishments/rec-1/description", "/accomplishments/:id/description", nil, h.GetDescription)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"pending":true`) {
		t.Errorf("expected pending flag: %s", w.Body.String())
	}
}

func TestAccomplishmentHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"NotFound", service.ErrRecordNotFound, 404, 15001},
		{"Empty", service.ErrEmptyDescription, 400, 15002},
		{"Forbidden", service.ErrForbidden, 403, 10003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAccomplishmentHandler(&mockAccomplishmentService{err: tt.err})

			w := serve("PUT", "/accomplishments/rec-1/description", "/accomplishments/:id/description",
				jsonBody(dto.UpdateDescriptionRequest{Description: "x"}), h.UpdateDescription)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCatalogHandler_CreateIndicator_Duplicate(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{err: service.ErrIndicatorCodeExists})

	w := serve("POST", "/indicators", "/indicators",
		jsonBody(dto.CreateIndicatorRequest{UnitID: testUnitID, Code: "Electrical"}), h.CreateIndicator)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12003 {
		t.Errorf("expected code 12003, got %d", resp.Code)
	}
}

func TestCatalogHandler_ListPersonnel_UnitNotFound(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{err: service.ErrUnitNotFound})

	w := serve("GET", "/units/u1/personnel", "/units/:id/personnel", nil, h.ListPersonnel)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestCatalogHandler_ListIndicators_RequiresUnit(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogService{})

	w := serve("GET", "/indicators", "/indicators", nil, h.ListIndicators)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
