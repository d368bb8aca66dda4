package routes

import (
	"markethub_backend/internal/handlers"
	"markethub_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Setup регистрирует все маршруты приложения под /api
func Setup(router *gin.Engine, h *handlers.AppHandlers) {
	api := router.Group("/api")

	registerAuthRoutes(api, h)
	registerJobRoutes(api, h)
	registerPropertyRoutes(api, h)
	registerAdminRoutes(api, h)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AppHandlers) {
	auth := api.Group("/auth")

	// Публичные ручки с rate limit: защита от перебора
	limited := auth.Group("")
	limited.Use(middleware.RateLimitMiddleware(5))
	{
		limited.POST("/signup", h.Auth.Signup)
		limited.POST("/login", h.Auth.Login)
		limited.POST("/request-password-reset", h.Auth.RequestPasswordReset)
		limited.POST("/verify-otp", h.Auth.VerifyOTP)
		limited.POST("/reset-password", h.Auth.ResetPassword)
	}

	auth.GET("/verify-email/:uid/:token", h.Auth.VerifyEmail)

	private := auth.Group("")
	private.Use(middleware.AuthMiddleware())
	{
		private.POST("/resend-verification", h.Auth.ResendVerification)
		private.GET("/profile", h.Auth.GetProfile)
		private.PUT("/profile", h.Auth.UpdateProfile)
		private.PUT("/update-email", h.Auth.UpdateEmail)
		private.PUT("/update-password", h.Auth.UpdatePassword)
		private.POST("/verify-identity", h.Auth.VerifyIdentity)
		private.POST("/upload-profile-photo", h.Auth.UploadProfilePhoto)
		private.POST("/upload-cover-photo", h.Auth.UploadCoverPhoto)
	}
}

func registerJobRoutes(api *gin.RouterGroup, h *handlers.AppHandlers) {
	jobs := api.Group("/jobs")

	// Публичное чтение
	jobs.GET("", h.Job.List)
	jobs.GET("/by-user/:user_id", h.Job.ByOwner)

	private := jobs.Group("")
	private.Use(middleware.AuthMiddleware())
	{
		private.POST("", h.Job.Create)
		private.GET("/my", h.Job.MyListings)
		private.GET("/my-applications", h.Job.MyApplications)
		private.DELETE("/:id", h.Job.Delete)
		private.PUT("/:id/thumbnail", h.Job.SetThumbnail)

		private.POST("/:id/apply", h.Job.Apply)
		private.GET("/:id/applications", h.Job.ListApplications)
		private.GET("/applications/:application_id", h.Job.GetApplication)
		private.PUT("/applications/:application_id/status", h.Job.UpdateApplicationStatus)
		private.DELETE("/applications/:application_id", h.Job.WithdrawApplication)
	}

	jobs.GET("/:id", h.Job.GetDetail)
}

func registerPropertyRoutes(api *gin.RouterGroup, h *handlers.AppHandlers) {
	properties := api.Group("/properties")

	properties.GET("", h.Property.List)
	properties.GET("/by-user/:user_id", h.Property.ByOwner)

	private := properties.Group("")
	private.Use(middleware.AuthMiddleware())
	{
		private.POST("", h.Property.Create)
		private.GET("/my", h.Property.MyListings)
		private.GET("/my-inquiries", h.Property.MyInquiries)
		private.DELETE("/:id", h.Property.Delete)
		private.PUT("/:id/thumbnail", h.Property.SetThumbnail)

		private.POST("/:id/inquire", h.Property.CreateInquiry)
		private.GET("/:id/inquiries", h.Property.ListInquiries)
		private.GET("/inquiries/:inquiry_id", h.Property.GetInquiry)
		private.PUT("/inquiries/:inquiry_id/status", h.Property.UpdateInquiryStatus)
		private.DELETE("/inquiries/:inquiry_id", h.Property.WithdrawInquiry)
	}

	properties.GET("/:id", h.Property.GetDetail)
}

func registerAdminRoutes(api *gin.RouterGroup, h *handlers.AppHandlers) {
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/jobs/:id/approve", h.Job.Approve)
		admin.POST("/jobs/:id/reject", h.Job.Reject)
		admin.POST("/properties/:id/approve", h.Property.Approve)
		admin.POST("/properties/:id/reject", h.Property.Reject)

		admin.GET("/identities", h.Auth.ListPendingIdentities)
		admin.POST("/identities/:user_id/approve", h.Auth.ApproveIdentity)
	}
}
