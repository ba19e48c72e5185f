package routes

import (
	"net/http"
	"time"

	"campusbook/handlers"
	"campusbook/middleware"
	"campusbook/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSlotRoutes registers slot management endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/slots")
	{
		api.Use(middleware.Protect())
		api.GET("", hb.ListAvailableSlotsHandler)
		api.GET("/:id", hb.GetSlotHandler)

		faculty := api.Group("")
		faculty.Use(middleware.Authorize(models.RoleFaculty))
		faculty.POST("", hb.CreateSlotHandler)
		faculty.GET("/mine", hb.ListMySlotsHandler)
		faculty.PUT("/:id", hb.UpdateSlotHandler)
		faculty.POST("/:id/cancel", hb.CancelSlotHandler)
		faculty.DELETE("/:id", hb.DeleteSlotHandler)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.Protect())
		api.GET("/:id", hb.GetBookingHandler)
		api.POST("/:id/cancel", hb.CancelBookingHandler)

		student := api.Group("")
		student.Use(middleware.Authorize(models.RoleStudent))
		student.POST("", hb.CreateBookingHandler)
		student.GET("", hb.ListMyBookingsHandler)

		faculty := api.Group("")
		faculty.Use(middleware.Authorize(models.RoleFaculty))
		faculty.GET("/faculty", hb.ListFacultyBookingsHandler)
		faculty.POST("/:id/approve", hb.ApproveBookingHandler)
		faculty.POST("/:id/reject", hb.RejectBookingHandler)
		faculty.POST("/:id/attendance", hb.MarkAttendanceHandler)
		faculty.GET("/tomorrow/summary", hb.TomorrowSummaryHandler)
		faculty.POST("/tomorrow/notify", hb.NotifyTomorrowStudentsHandler)
	}
}

// RegisterNotificationRoutes registers the in-app notification endpoints.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.Protect())
		api.GET("", hb.ListNotificationsHandler)
		api.PUT("/:id/read", hb.MarkNotificationReadHandler)
		api.PUT("/push-token", hb.UpdatePushTokenHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "campusbook is up"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterSlotRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
}
