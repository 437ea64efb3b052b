package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boqtracker/internal/middleware"
	"boqtracker/internal/modules/aggregation"
	"boqtracker/internal/modules/boq"
	"boqtracker/internal/modules/calculation"
	"boqtracker/internal/modules/cascade"
	"boqtracker/internal/modules/concentration"
	"boqtracker/internal/modules/contractupdate"
	"boqtracker/internal/modules/projectinfo"
	"boqtracker/internal/modules/report"
	"boqtracker/internal/pkg/excelimport"
	jwtsvc "boqtracker/internal/pkg/jwt"
	"boqtracker/internal/pkg/lock"
	"boqtracker/internal/pkg/logger"
	"boqtracker/internal/repository"
)

type routerDeps struct {
	store       *repository.Store
	locker      lock.Locker
	jwt         *jwtsvc.Service // nil leaves mutating routes open
	log         *logger.Logger
	corsOrigins []string
	decoder     calculation.Decoder
}

func newRouter(d routerDeps) *gin.Engine {
	if d.decoder == nil {
		d.decoder = excelimport.NewDecoder()
	}

	engine := aggregation.NewEngine(d.store, d.log)
	concentrationService := concentration.NewService(d.store, engine, d.log)
	calculationService := calculation.NewService(d.store, d.decoder, concentrationService, d.log)
	contractUpdateService := contractupdate.NewService(d.store, d.locker, d.log)
	coordinator := cascade.NewCoordinator(d.store, concentrationService, engine, d.log)

	boqHandler := boq.NewHandler(boq.NewService(d.store, d.log))
	concentrationHandler := concentration.NewHandler(concentrationService)
	calculationHandler := calculation.NewHandler(calculationService)
	contractUpdateHandler := contractupdate.NewHandler(contractUpdateService)
	projectInfoHandler := projectinfo.NewHandler(projectinfo.NewService(d.store, d.log))
	reportHandler := report.NewHandler(report.NewService(d.store))
	cascadeHandler := cascade.NewHandler(coordinator)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ErrorLogger(d.log), middleware.CORS(d.corsOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.Guard(d.jwt), middleware.GuardRoles(d.jwt, middleware.RoleEditor, middleware.RoleAdmin))

		admin := protected.Group("")
		admin.Use(middleware.GuardRoles(d.jwt, middleware.RoleAdmin))

		boqHandler.RegisterRoutes(v1, protected)
		concentrationHandler.RegisterRoutes(v1, protected, admin)
		calculationHandler.RegisterRoutes(v1, protected)
		contractUpdateHandler.RegisterRoutes(v1, protected)
		projectInfoHandler.RegisterRoutes(v1, protected)
		reportHandler.RegisterRoutes(v1)
		cascadeHandler.RegisterRoutes(protected, admin)
	}
	return r
}
