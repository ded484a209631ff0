// File: /routes/routes.go
package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eventhub-api/config"
	"eventhub-api/controllers"
	"eventhub-api/middleware"
	"eventhub-api/models"
	"eventhub-api/repositories"
	"eventhub-api/services"
	"eventhub-api/utils"
)

// Dependencies are the long-lived collaborators built in main.
type Dependencies struct {
	EmailService *services.EmailService
	Revocations  services.RevocationStore
	RateLimiter  *middleware.RateLimiter
	Logger       *logrus.Logger
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, deps Dependencies) {
	l := deps.Logger

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	profileRepo := repositories.NewProfileRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	rsvpRepo := repositories.NewRSVPRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, profileRepo, deps.Revocations, services.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}, l)
	activationService := services.NewActivationService(db, profileRepo, l)
	eventService := services.NewEventService(db, eventRepo, categoryRepo, rsvpRepo, l)
	rsvpService := services.NewRSVPService(db, eventRepo, rsvpRepo, deps.EmailService, l)
	categoryService := services.NewCategoryService(categoryRepo, l)
	dashboardService := services.NewDashboardService(eventRepo, categoryRepo, rsvpRepo)

	// Controllers
	secureCookie := strings.HasPrefix(cfg.BaseURL, "https://")
	authController := controllers.NewAuthController(authService, activationService, deps.EmailService, secureCookie, l)
	eventController := controllers.NewEventController(eventService, rsvpService, l)
	categoryController := controllers.NewCategoryController(categoryService, l)
	dashboardController := controllers.NewDashboardController(authService, dashboardService, l)

	r.Use(middleware.Authenticate(authService, l))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			utils.SendError(c, http.StatusServiceUnavailable, "database unavailable: "+err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	})

	participant := middleware.RequireRole(models.RoleParticipant, authService)
	organizer := middleware.RequireRole(models.RoleOrganizer, authService)
	admin := middleware.RequireRole(models.RoleAdmin, authService)
	throttle := middleware.RateLimit(deps.RateLimiter)

	// Accounts
	r.GET("/signup", authController.SignupPage)
	r.POST("/signup", throttle, authController.Signup)
	r.GET("/login", authController.LoginPage)
	r.POST("/login", throttle, authController.Login)
	r.POST("/logout", middleware.RequireLogin(), authController.Logout)
	r.GET("/activate/:token", authController.Activate)
	r.GET("/profile", participant, authController.Profile)

	// Dashboards
	r.GET("/", participant, dashboardController.Dashboard)
	dashboard := r.Group("/dashboard")
	{
		dashboard.GET("/admin", admin, dashboardController.Admin)
		dashboard.GET("/organizer", organizer, dashboardController.Organizer)
		dashboard.GET("/participant", participant, dashboardController.Participant)
	}

	// Events
	events := r.Group("/events")
	{
		events.GET("", eventController.GetEvents)
		events.POST("", organizer, eventController.CreateEvent)
		events.GET("/:id", eventController.GetEvent)
		events.POST("/:id/edit", organizer, eventController.UpdateEvent)
		events.POST("/:id/delete", organizer, eventController.DeleteEvent)
		events.POST("/:id/rsvp", participant, eventController.RSVP)
		events.POST("/:id/cancel-rsvp", participant, eventController.CancelRSVP)
		events.GET("/:id/participants", participant, eventController.GetParticipants)
	}

	// Categories
	categories := r.Group("/categories", admin)
	{
		categories.GET("", categoryController.GetCategories)
		categories.POST("", categoryController.CreateCategory)
		categories.POST("/:id/edit", categoryController.UpdateCategory)
		categories.POST("/:id/delete", categoryController.DeleteCategory)
	}
}
