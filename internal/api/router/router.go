package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gso-office/backend/config"
	"gso-office/backend/internal/api/handler"
	"gso-office/backend/internal/api/middleware"
	"gso-office/backend/internal/model"
	"gso-office/backend/pkg/jwt"
	"gso-office/backend/pkg/redis"
)

// jsonBodyLimit 非上传接口的请求体上限
const jsonBodyLimit = 1 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// 角色组合
	admins := []string{model.RoleGSO, model.RoleDirector}
	managers := []string{model.RoleGSO, model.RoleDirector, model.RoleUnitHead}
	staff := []string{model.RoleGSO, model.RoleDirector, model.RoleUnitHead, model.RolePersonnel}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(rdb, cfg.Redis.RateLimit, time.Minute))
	v1.Use(middleware.JWTAuth(jwtMgr, rdb))

	// 上传接口单独放宽请求体上限
	v1.POST("/imports",
		middleware.BodyLimit(cfg.Server.MaxUploadSize+jsonBodyLimit),
		middleware.RoleAuth(managers...),
		h.Import.Import)

	authorized := v1.Group("")
	authorized.Use(middleware.BodyLimit(jsonBodyLimit))
	{
		// 目录模块
		authorized.GET("/units", h.Catalog.ListUnits)
		authorized.GET("/units/:id/personnel", h.Catalog.ListPersonnel)
		authorized.GET("/departments", h.Catalog.ListDepartments)

		indicators := authorized.Group("/indicators")
		{
			indicators.GET("", h.Catalog.ListIndicators)
			indicators.POST("", middleware.RoleAuth(managers...), h.Catalog.CreateIndicator)
			indicators.PUT("/:id", middleware.RoleAuth(managers...), h.Catalog.UpdateIndicator)
		}

		// 服务申请模块（单元范围与指派关系由 Service 层鉴权）
		requests := authorized.Group("/requests")
		{
			requests.GET("", h.Request.ListRequests)
			requests.POST("", h.Request.CreateRequest)
			requests.GET("/:id", h.Request.GetRequest)

			requests.POST("/:id/approve", middleware.RoleAuth(managers...), h.Request.Approve)
			requests.POST("/:id/cancel", h.Request.Cancel)
			requests.POST("/:id/start", middleware.RoleAuth(staff...), h.Request.Start)
			requests.POST("/:id/done", middleware.RoleAuth(staff...), h.Request.MarkDone)
			requests.POST("/:id/complete", middleware.RoleAuth(managers...), h.Request.Complete)
			requests.POST("/:id/reject", middleware.RoleAuth(managers...), h.Request.Reject)
			requests.POST("/:id/emergency", middleware.RoleAuth(managers...), h.Request.Emergency)
			requests.DELETE("/:id/emergency", middleware.RoleAuth(managers...), h.Request.Unflag)

			requests.PUT("/:id/personnel", middleware.RoleAuth(managers...), h.Request.AssignPersonnel)
			requests.PUT("/:id/materials", middleware.RoleAuth(managers...), h.Request.AssignMaterials)
			requests.PUT("/:id/indicator", middleware.RoleAuth(staff...), h.Request.SelectIndicator)
			requests.POST("/:id/reports", middleware.RoleAuth(staff...), h.Request.AddReport)
		}
		authorized.GET("/tasks/mine", middleware.RoleAuth(staff...), h.Request.ListMyTasks)

		// 库存模块
		inventory := authorized.Group("/inventory")
		{
			inventory.GET("", h.Inventory.ListItems)
			inventory.POST("", middleware.RoleAuth(managers...), h.Inventory.CreateItem)
			inventory.PUT("/:id", middleware.RoleAuth(managers...), h.Inventory.UpdateItem)
			inventory.DELETE("/:id", middleware.RoleAuth(managers...), h.Inventory.DeleteItem)
		}

		// 工作记录模块
		accomplishments := authorized.Group("/accomplishments", middleware.RoleAuth(staff...))
		{
			accomplishments.GET("", h.Accomplishment.ListReports)
			accomplishments.GET("/:id/description", h.Accomplishment.GetDescription)
			accomplishments.PUT("/:id/indicator", middleware.RoleAuth(managers...), h.Accomplishment.UpdateIndicator)
			accomplishments.PUT("/:id/description", middleware.RoleAuth(managers...), h.Accomplishment.UpdateDescription)
		}

		// 月度汇总（IPMT）模块
		rollups := authorized.Group("/rollups", middleware.RoleAuth(managers...))
		{
			rollups.GET("/preview", h.Rollup.Preview)
			rollups.POST("", h.Rollup.Save)
			rollups.GET("", h.Rollup.ListEntries)
			rollups.POST("/export", h.Rollup.Export)
		}

		// 统计看板
		authorized.GET("/analytics", middleware.RoleAuth(admins...), h.Analytics.Get)
	}

	return r
}
