package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"hr-lms/backend/config"
	"hr-lms/backend/internal/api/handler"
	"hr-lms/backend/internal/api/middleware"
	"hr-lms/backend/pkg/jwt"
	"hr-lms/backend/pkg/redis"
)

// 管理类接口允许的角色
var managers = []string{"admin", "hr"}

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	var (
		blacklist middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	authorized := v1.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
	{
		// 认证模块
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/me", h.Auth.GetCurrentUser)

		manage := middleware.RoleAuth(managers...)

		// 岗位模块
		roles := authorized.Group("/roles")
		{
			roles.GET("", h.JobRole.ListRoles)
			roles.GET("/:id", h.JobRole.GetRole)
			roles.POST("", manage, h.JobRole.CreateRole)
			roles.PUT("/:id", manage, h.JobRole.UpdateRole)
		}

		// 培训课程模块
		trainings := authorized.Group("/trainings")
		{
			trainings.GET("", h.Training.ListTrainings)
			trainings.GET("/:id", h.Training.GetTraining)
			trainings.POST("", manage, h.Training.CreateTraining)
			trainings.PUT("/:id", manage, h.Training.UpdateTraining)
		}

		// 岗位分配模块
		assignments := authorized.Group("/assignments", manage)
		{
			assignments.GET("", h.Assignment.ListAssignments)
			assignments.GET("/:id", h.Assignment.GetAssignment)
			assignments.POST("", h.Assignment.CreateAssignment)
			assignments.PUT("/:id", h.Assignment.UpdateAssignment)
			assignments.POST("/:id/deactivate", h.Assignment.DeactivateAssignment)
		}

		// 岗位培训要求模块
		requirements := authorized.Group("/requirements")
		{
			requirements.GET("", h.Requirement.ListRequirements)
			requirements.GET("/:id", h.Requirement.GetRequirement)
			requirements.POST("", manage, h.Requirement.CreateRequirement)
			requirements.PUT("/:id", manage, h.Requirement.UpdateRequirement)
		}

		// 参训记录模块
		completions := authorized.Group("/completions", manage)
		{
			completions.GET("", h.Completion.ListCompletions)
			completions.POST("", h.Completion.RecordCompletion)
		}

		// 培训需求模块
		needs := authorized.Group("/needs", manage)
		{
			needs.GET("", h.Need.ListNeeds)
			needs.GET("/:id", h.Need.GetNeed)
			needs.POST("", h.Need.CreateNeed)
			needs.POST("/:id/resolve", h.Need.ResolveNeed)
			needs.POST("/:id/reopen", h.Need.ReopenNeed)
			needs.POST("/derive/:user_id", middleware.RoleAuth("admin"), h.Need.DeriveForUser)
		}

		// 运维模块
		maintenance := authorized.Group("/maintenance", middleware.RoleAuth("admin"))
		{
			maintenance.POST("/rebuild-needs",
				middleware.RateLimit(limiter, cfg.Derivation.RebuildRateLimit, cfg.Derivation.RebuildRateWindow),
				h.Maintenance.RebuildNeeds,
			)
			maintenance.GET("/rebuild-needs/last", h.Maintenance.LastRebuild)
		}

		// 导出模块
		export := authorized.Group("/export", manage)
		{
			export.GET("/needs", h.Export.ExportNeeds)
		}
	}

	return r
}
