package router

import (
	"github.com/gin-gonic/gin"

	"fritakagp.app/backend/internal/http/dto"
	"fritakagp.app/backend/internal/http/handler"
	"fritakagp.app/backend/internal/http/middleware"
	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/service"
)

type RouterConfig struct {
	IdentityHeader string
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	health := handler.NewHealthHandler(services.Jobs())
	router.GET("/health", health.Check)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequireIdentity(cfg.IdentityHeader))
	{
		chronic := v1.Group("/chronic")
		ApplicationRouter(chronic.Group("/application"),
			handler.NewSubmissionHandler[*model.ChronicApplication, dto.ChronicApplicationRequest](services.ChronicApplications()))
		ClaimRouter(chronic.Group("/claim"),
			handler.NewClaimHandler[*model.ChronicClaim, dto.ChronicClaimRequest](services.ChronicClaims()))

		pregnancy := v1.Group("/pregnancy")
		ApplicationRouter(pregnancy.Group("/application"),
			handler.NewSubmissionHandler[*model.PregnancyApplication, dto.PregnancyApplicationRequest](services.PregnancyApplications()))
		ClaimRouter(pregnancy.Group("/claim"),
			handler.NewClaimHandler[*model.PregnancyClaim, dto.PregnancyClaimRequest](services.PregnancyClaims()))
	}
}
