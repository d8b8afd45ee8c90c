package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"versare/admin"
	"versare/analytics"
	"versare/cache"
	"versare/common"
	"versare/config"
	"versare/dashboard"
	"versare/database"
	"versare/email"
	"versare/leads"
	"versare/locations"
	"versare/properties"
	"versare/settings"
	"versare/site"
	"versare/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		common.Logger.WithError(err).Fatal("Failed to load configuration")
	}
	common.InitLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := common.ConnectDb(cfg.DatabasePath)
	if err != nil {
		common.Logger.WithError(err).Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		common.Logger.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.Seed(db, database.SeedOptions{
		AdminPassword: cfg.AdminPassword,
		SampleData:    cfg.SeedSampleData,
	}); err != nil {
		common.Logger.WithError(err).Fatal("Failed to seed database")
	}

	files := storage.NewStore(cfg.UploadsDir, cfg.UploadsURL)
	if err := files.EnsureDir(); err != nil {
		common.Logger.WithError(err).Fatal("Failed to create uploads directory")
	}

	router := gin.Default()

	if len(cfg.CorsOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CorsOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AddAllowHeaders("Authorization")
		router.Use(cors.New(corsConfig))
	} else {
		router.Use(cors.Default())
	}

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("versare-session", store))

	auth := admin.NewAuthService(db, cfg.SessionSecret, cfg.SessionTTL)
	adminModule := admin.NewAdminModule(auth)

	api := router.Group("/api", cache.ETagMiddleware())
	adminGroup := router.Group("/api/admin", adminModule.RequireAuth)

	views := analytics.NewAnalyticsModule(db)
	mailer := email.NewEmailService(cfg.SMTP)
	if !mailer.Enabled() {
		common.Logger.Info("SMTP não configurado, avisos de novos leads desabilitados")
	}

	adminModule.RegisterRoutes(api, adminGroup)
	locations.NewLocationsModule(locations.NewService(db, files)).RegisterRoutes(api, adminGroup)
	properties.NewPropertiesModule(properties.NewService(db, files), views).RegisterRoutes(api, adminGroup)
	leads.NewLeadsModule(leads.NewService(db, mailer)).RegisterRoutes(api, adminGroup)
	settings.NewSettingsModule(settings.NewService(db)).RegisterRoutes(api, adminGroup)
	dashboard.NewDashboardModule(db, views).RegisterRoutes(adminGroup)
	site.NewSiteModule(db, cfg.SiteURL, cfg.PublicDir, cfg.UploadsDir, cfg.UploadsURL).RegisterRoutes(router)

	purge, err := admin.StartSessionPurge(auth)
	if err != nil {
		common.Logger.WithError(err).Fatal("Failed to schedule session purge")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		common.Logger.Infof("Starting server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.Logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	common.Logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.Logger.WithError(err).Error("Server forced to shutdown")
	}
	<-purge.Stop().Done()
	mailer.Wait()
}
