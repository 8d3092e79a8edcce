package routes

import (
	"time"

	"spacrm-backend/config"
	"spacrm-backend/controllers"
	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/services"
	"spacrm-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles what the HTTP layer depends on.
type Services struct {
	Auth            *services.AuthService
	Customers       *services.CustomerService
	Linking         *services.LinkingService
	Staff           *services.StaffService
	Schedules       *services.ScheduleService
	TimeOff         *services.TimeOffService
	DefaultSchedule *services.DefaultScheduleService
	Catalog         *services.CatalogService
	Media           *services.MediaService
	Reminders       *services.ReminderService
	Dashboard       *services.DashboardService
	Export          *services.ExportService
}

func SetupRouter(svc Services, corsOrigins []string, log *zap.Logger) *gin.Engine {
	log = logger.OrNop(log)
	r := gin.New()
	r.Use(gin.Recovery())

	origins := make(map[string]bool, len(corsOrigins))
	for _, o := range corsOrigins {
		origins[o] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Total-Count"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return origins[origin]
		},
		MaxAge: 12 * time.Hour,
	}))

	r.Use(config.PerformanceLogger(log))

	authCtl := controllers.NewAuthController(svc.Auth, svc.Customers, svc.Staff, log)
	customerCtl := controllers.NewCustomerController(svc.Customers, svc.Export, log)
	linkingCtl := controllers.NewLinkingController(svc.Linking, log)
	staffCtl := controllers.NewStaffController(svc.Staff, log)
	scheduleCtl := controllers.NewScheduleController(svc.Schedules, log)
	timeOffCtl := controllers.NewTimeOffController(svc.TimeOff, log)
	profileCtl := controllers.NewProfileController(svc.DefaultSchedule, log)
	catalogCtl := controllers.NewCatalogController(svc.Catalog, log)
	mediaCtl := controllers.NewMediaController(svc.Media, log)
	reminderCtl := controllers.NewReminderController(svc.Reminders, log)
	dashboardCtl := controllers.NewDashboardController(svc.Dashboard, log)

	authenticated := []gin.HandlerFunc{
		utils.AuthMiddleware(),
		utils.RequireActive(svc.Auth.AccountStatus),
	}
	staffOnly := utils.RequireRole(models.RoleAdmin, models.RoleStaff)
	adminOnly := utils.RequireRole(models.RoleAdmin)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
		auth.GET("/me", append(authenticated, authCtl.Me)...)
	}

	api := r.Group("/api")
	api.Use(authenticated...)
	{
		// Customer routes
		api.GET("/customers/me", customerCtl.GetMyProfile)
		api.PUT("/customers/me", customerCtl.UpdateMyProfile)
		customers := api.Group("/customers", staffOnly)
		{
			customers.POST("", customerCtl.CreateCustomer)
			customers.GET("", customerCtl.GetCustomers)
			customers.GET("/lookup", customerCtl.LookupCustomer)
			customers.GET("/export", customerCtl.ExportCustomers)
			customers.GET("/:id", customerCtl.GetCustomer)
			customers.PUT("/:id", customerCtl.UpdateCustomer)
			customers.DELETE("/:id", customerCtl.DeleteCustomer)
			customers.POST("/:id/restore", customerCtl.RestoreCustomer)
		}

		// Account linking routes
		linking := api.Group("/linking")
		{
			linking.POST("/initiate", linkingCtl.Initiate)
			linking.POST("/verify", linkingCtl.Verify)
		}

		// Staff routes
		staff := api.Group("/staff", staffOnly)
		{
			staff.GET("", staffCtl.GetStaffList)
			staff.GET("/:id", staffCtl.GetStaff)
			staff.POST("", adminOnly, staffCtl.CreateStaff)
			staff.PUT("/:id", adminOnly, staffCtl.UpdateStaff)
			staff.PUT("/:id/status", adminOnly, staffCtl.ChangeStatus)
			staff.POST("/:id/offboard", adminOnly, staffCtl.Offboard)
			staff.PUT("/:id/services", adminOnly, staffCtl.AssignServices)

			staff.GET("/:id/schedule", scheduleCtl.GetWeek)
			staff.PUT("/:id/schedule", adminOnly, scheduleCtl.ReplaceWeek)
			staff.GET("/:id/overrides", scheduleCtl.ListOverrides)
			staff.POST("/:id/overrides", adminOnly, scheduleCtl.CreateOverride)
			staff.GET("/:id/availability", scheduleCtl.GetAvailability)
		}
		api.PATCH("/schedules/:id", adminOnly, scheduleCtl.UpdateEntry)

		// Time-off routes
		timeOff := api.Group("/time-off", staffOnly)
		{
			timeOff.POST("", timeOffCtl.RequestTimeOff)
			timeOff.GET("", timeOffCtl.GetTimeOffs)
			timeOff.GET("/:id", timeOffCtl.GetTimeOff)
			timeOff.PUT("/:id/decision", adminOnly, timeOffCtl.DecideTimeOff)
		}

		// Own working hours
		api.GET("/default-schedule", profileCtl.GetWorkingHours)
		api.PUT("/default-schedule", profileCtl.UpdateWorkingHours)

		// Catalog routes, readable by everyone signed in
		catalog := api.Group("/catalog")
		{
			catalog.GET("/categories", catalogCtl.GetCategories)
			catalog.GET("/categories/:id", catalogCtl.GetCategory)
			catalog.POST("/categories", adminOnly, catalogCtl.CreateCategory)
			catalog.PUT("/categories/:id", adminOnly, catalogCtl.UpdateCategory)
			catalog.DELETE("/categories/:id", adminOnly, catalogCtl.DeleteCategory)

			catalog.GET("/services", catalogCtl.GetServices)
			catalog.GET("/services/:id", catalogCtl.GetService)
			catalog.POST("/services", adminOnly, catalogCtl.CreateService)
			catalog.PUT("/services/:id", adminOnly, catalogCtl.UpdateService)
			catalog.DELETE("/services/:id", adminOnly, catalogCtl.DeleteService)

			catalog.GET("/products", catalogCtl.GetProducts)
			catalog.GET("/products/:id", catalogCtl.GetProduct)
			catalog.POST("/products", adminOnly, catalogCtl.CreateProduct)
			catalog.PUT("/products/:id", adminOnly, catalogCtl.UpdateProduct)
			catalog.DELETE("/products/:id", adminOnly, catalogCtl.DeleteProduct)
			catalog.POST("/products/:id/images", adminOnly, catalogCtl.AddProductImage)
			catalog.DELETE("/products/:id/images/:imageId", adminOnly, catalogCtl.RemoveProductImage)

			catalog.GET("/treatment-plans", catalogCtl.GetTreatmentPlans)
			catalog.GET("/treatment-plans/:id", catalogCtl.GetTreatmentPlan)
			catalog.POST("/treatment-plans", adminOnly, catalogCtl.CreateTreatmentPlan)
			catalog.PUT("/treatment-plans/:id", adminOnly, catalogCtl.UpdateTreatmentPlan)
			catalog.PUT("/treatment-plans/:id/services", adminOnly, catalogCtl.SetTreatmentPlanServices)
			catalog.DELETE("/treatment-plans/:id", adminOnly, catalogCtl.DeleteTreatmentPlan)
		}

		// Media routes
		media := api.Group("/media", staffOnly)
		{
			media.POST("", mediaCtl.Upload)
			media.GET("", mediaCtl.GetMediaList)
			media.GET("/:id", mediaCtl.GetMedia)
			media.DELETE("/:id", adminOnly, mediaCtl.DeleteMedia)
		}

		// Dashboard and reminders
		api.GET("/dashboard", staffOnly, dashboardCtl.GetDashboardOverview)
		reminders := api.Group("/reminders", adminOnly)
		{
			reminders.POST("/birthdays/run", reminderCtl.RunBirthdayReminders)
			reminders.GET("/logs", reminderCtl.GetReminderLogs)
		}

		// Account administration
		api.PUT("/accounts/:id/role", adminOnly, authCtl.SetRole)
	}

	return r
}
