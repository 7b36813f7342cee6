package routes

import (
	"github.com/gin-gonic/gin"

	"campuscore/internal/authz"
	"campuscore/internal/handlers"
	"campuscore/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	otpHandler *handlers.OTPHandler,
	userHandler *handlers.UserHandler,
	studentHandler *handlers.ProfileHandler,
	teacherHandler *handlers.ProfileHandler,
	nonTeachingHandler *handlers.ProfileHandler,
	reportHandler *handlers.ReportHandler,
) *gin.Engine {

	// ---- public
	r.POST("/login", authHandler.Login)
	r.POST("/login/verify", authHandler.VerifyLogin)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/otp/request", otpHandler.RequestOTP)
	r.POST("/otp/verify", otpHandler.VerifyOTP)
	r.POST("/password/forgot", authHandler.ForgotPassword)
	r.POST("/password/reset", authHandler.ResetPassword)

	// ---- protected
	r.Use(middleware.AuthMiddleware())

	r.POST("/logout", authHandler.Logout)
	r.GET("/me", userHandler.Me)

	// USERS (Admin)
	users := r.Group("/users", middleware.RequireRoles(authz.RoleAdmin))
	{
		users.POST("/", userHandler.CreateUser)
		users.GET("/count", userHandler.GetUserCount)
		users.GET("/count/role/:role", userHandler.GetUserCountByRole)
		users.GET("/", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
		users.POST("/:id/picture", userHandler.UploadProfilePicture)
	}

	mountProfiles := func(path, letterPath string, h *handlers.ProfileHandler) {
		g := r.Group(path, middleware.RequireRoles(authz.RoleAdmin))
		{
			g.POST("/", h.Create)
			g.GET("/", h.List)
			g.GET("/:id", h.Get)
			g.PUT("/:id", h.Update)
			g.DELETE("/:id", h.Delete)
			g.GET("/:id/"+letterPath, h.GenerateLetter)
			g.POST("/:id/image", h.UploadImage)
		}
	}

	// STUDENTS / TEACHERS / NON-TEACHING STAFF
	mountProfiles("/students", "admission-letter", studentHandler)
	mountProfiles("/teachers", "employment-letter", teacherHandler)
	mountProfiles("/non-teaching-staff", "employment-letter", nonTeachingHandler)

	// REPORTS (Admin)
	reports := r.Group("/reports", middleware.RequireRoles(authz.RoleAdmin))
	{
		reports.GET("/personnel", reportHandler.PersonnelSummary)
	}

	return r
}
