package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/steevenmondithoka/attendance-deployment/config"
	"github.com/steevenmondithoka/attendance-deployment/internal/api/handler"
	"github.com/steevenmondithoka/attendance-deployment/internal/api/middleware"
	"github.com/steevenmondithoka/attendance-deployment/internal/model"
	"github.com/steevenmondithoka/attendance-deployment/pkg/jwt"
	"github.com/steevenmondithoka/attendance-deployment/pkg/redis"
)

// maxBodyBytes 全局请求体上限；导入 CSV 也走该限制
const maxBodyBytes = 5 << 20 // 5MB

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
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录/注册限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/teachers", middleware.RoleAuth(model.RoleAdmin), h.Auth.CreateTeacher)

			// 班级模块
			classes := authorized.Group("/classes")
			{
				classes.POST("", middleware.RoleAuth(model.RoleTeacher, model.RoleAdmin), h.Class.CreateClass)
				classes.GET("", middleware.RoleAuth(model.RoleTeacher, model.RoleAdmin), h.Class.ListClasses)
				classes.GET("/enrolled", middleware.RoleAuth(model.RoleStudent), h.Class.ListEnrolledClasses)
				classes.GET("/:id", h.Class.GetClass)

				// 花名册录入（班级归属在 Service 层校验）
				classes.POST("/:id/students", middleware.RoleAuth(model.RoleTeacher), h.Student.AddStudent)
				classes.POST("/:id/students/import", middleware.RoleAuth(model.RoleTeacher), h.Student.ImportStudents)

				// 点名
				classes.POST("/:id/attendance", middleware.RoleAuth(model.RoleTeacher), h.Attendance.MarkAttendance)
				classes.GET("/:id/attendance", middleware.RoleAuth(model.RoleTeacher), h.Attendance.GetDay)

				// 报表
				reports := classes.Group("/:id/reports", middleware.RoleAuth(model.RoleTeacher))
				{
					reports.GET("/daily", h.Report.DailyReport)
					reports.GET("/monthly", h.Report.MonthlyReport)
					reports.GET("/range", h.Report.RangeReport)
					reports.GET("/range/excel", h.Report.RangeReportExcel)
				}
			}

			// 学生模块
			students := authorized.Group("/students")
			{
				students.GET("/:id", h.Student.GetStudent)
				students.GET("/:id/attendance", h.Attendance.GetStudentHistory)
			}

			// 仪表盘模块
			dashboard := authorized.Group("/dashboard", middleware.RoleAuth(model.RoleAdmin))
			{
				dashboard.GET("/stats", h.Dashboard.Stats)
			}
		}
	}

	return r
}
