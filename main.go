package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/suriyap/repair-system-api/config"
	"github.com/suriyap/repair-system-api/controllers"
	"github.com/suriyap/repair-system-api/middleware"
	"github.com/suriyap/repair-system-api/models"
	"github.com/suriyap/repair-system-api/services"
)

func main() {
	log.Println("Starting Repair System API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Category{},
		&models.Equipment{},
		&models.RepairRequest{},
		&models.RepairHistory{},
		&models.RepairCost{},
		&models.RepairFile{},
		&models.Comment{},
		&models.SparePart{},
		&models.Team{},
		&models.TeamMember{},
		&models.Notification{},
		&models.SLASetting{},
		&models.MaintenanceSchedule{},
		&models.ChecklistTemplate{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Wire up services
	emailService := services.NewEmailService(cfg)
	sink := services.InitNotificationSink(db, emailService)
	lifecycle := services.InitRepairLifecycle(db, sink)

	if _, err := services.InitS3Service(); err != nil {
		log.Printf("S3 not configured, file uploads disabled: %v", err)
	}

	scheduler := services.InitMaintenanceScheduler(db, lifecycle)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Public auth endpoints
		auth := v1.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
		}

		// Everything below requires a valid token
		authed := v1.Group("")
		authed.Use(middleware.RequireAuth())
		{
			profile := authed.Group("/profile")
			{
				profile.GET("", controllers.GetProfile)
				profile.PUT("", controllers.UpdateProfile)
				profile.PUT("/password", controllers.ChangePassword)
				profile.POST("/avatar", controllers.UploadAvatar)
			}

			repairs := authed.Group("/repairs")
			{
				repairs.GET("", controllers.ListRepairs)
				repairs.GET("/categories", controllers.ListCategories)
				repairs.GET("/:id", controllers.GetRepair)
				repairs.POST("", controllers.CreateRepair)
				repairs.PUT("/:id", controllers.UpdateRepair)
				repairs.DELETE("/:id", controllers.DeleteRepair)
				repairs.POST("/:id/comments", controllers.AddRepairComment)
				repairs.POST("/:id/rating", controllers.RateRepair)

				repairs.PUT("/:id/status", middleware.RequireTechnician(), controllers.UpdateRepairStatus)
				repairs.POST("/:id/costs", middleware.RequireTechnician(), controllers.AddRepairCost)
				repairs.POST("/:id/after-photo", middleware.RequireTechnician(), controllers.UploadAfterPhoto)
				repairs.PUT("/:id/assign", middleware.RequireAdmin(), controllers.AssignRepair)
			}

			users := authed.Group("/users")
			{
				users.GET("/technicians", controllers.ListTechnicians)
				users.GET("", middleware.RequireAdmin(), controllers.ListUsers)
				users.GET("/:id", middleware.RequireAdmin(), controllers.GetUser)
				users.POST("", middleware.RequireAdmin(), controllers.CreateUser)
				users.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateUser)
				users.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteUser)
			}
			authed.GET("/departments", controllers.ListDepartments)

			equipment := authed.Group("/equipment")
			{
				equipment.GET("", controllers.ListEquipment)
				equipment.GET("/:id", controllers.GetEquipment)
				equipment.GET("/:id/qr", controllers.GetEquipmentQR)
				equipment.GET("/:id/repairs", controllers.GetEquipmentRepairs)
				equipment.POST("", middleware.RequireAdmin(), controllers.CreateEquipment)
				equipment.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateEquipment)
				equipment.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteEquipment)
			}

			parts := authed.Group("/spare-parts")
			{
				parts.GET("", controllers.ListSpareParts)
				parts.GET("/categories", controllers.ListSparePartCategories)
				parts.GET("/:id", controllers.GetSparePart)
				parts.POST("", middleware.RequireAdmin(), controllers.CreateSparePart)
				parts.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateSparePart)
				parts.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteSparePart)
				parts.POST("/:id/adjust", middleware.RequireTechnician(), controllers.AdjustSparePartStock)
			}

			teams := authed.Group("/teams")
			{
				teams.GET("", controllers.ListTeams)
				teams.GET("/:id", controllers.GetTeam)
				teams.POST("", middleware.RequireAdmin(), controllers.CreateTeam)
				teams.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateTeam)
				teams.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteTeam)
				teams.POST("/:id/members", middleware.RequireAdmin(), controllers.AddTeamMember)
				teams.DELETE("/:id/members/:userId", middleware.RequireAdmin(), controllers.RemoveTeamMember)
			}

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", controllers.ListNotifications)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.DELETE("/:id", controllers.DeleteNotification)
			}

			dashboard := authed.Group("/dashboard", middleware.RequireTechnician())
			{
				dashboard.GET("/stats", controllers.GetDashboardStats)
				dashboard.GET("/chart", controllers.GetDashboardChart)
				dashboard.GET("/recent", controllers.GetDashboardRecent)
				dashboard.GET("/technicians", controllers.GetTechnicianStats)
			}

			reports := authed.Group("/reports", middleware.RequireAdmin())
			{
				reports.GET("/monthly", controllers.GetMonthlyReport)
				reports.GET("/sla", controllers.GetSLAReport)
				reports.PUT("/sla-settings", controllers.UpsertSLASetting)
				reports.GET("/trends", controllers.GetTrendsReport)
				reports.GET("/leaderboard", controllers.GetTechnicianLeaderboard)
				reports.GET("/excel", controllers.DownloadRepairReport)
			}

			maintenance := authed.Group("/maintenance", middleware.RequireTechnician())
			{
				maintenance.GET("", controllers.ListMaintenance)
				maintenance.GET("/:id", controllers.GetMaintenance)
				maintenance.POST("", middleware.RequireAdmin(), controllers.CreateMaintenance)
				maintenance.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateMaintenance)
				maintenance.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteMaintenance)
				maintenance.POST("/:id/run", middleware.RequireAdmin(), controllers.RunMaintenanceNow)
			}

			checklists := authed.Group("/checklists")
			{
				checklists.GET("", controllers.ListChecklists)
				checklists.GET("/:id", controllers.GetChecklist)
				checklists.POST("", middleware.RequireAdmin(), controllers.CreateChecklist)
				checklists.PUT("/:id", middleware.RequireAdmin(), controllers.UpdateChecklist)
				checklists.DELETE("/:id", middleware.RequireAdmin(), controllers.DeleteChecklist)
			}
		}
	}

	// Shut down the scheduler and database cleanly on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		scheduler.Stop()
		if err := config.CloseDatabase(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
		os.Exit(0)
	}()

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Repair System API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
