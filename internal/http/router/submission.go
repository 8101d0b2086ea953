package router

import (
	"github.com/gin-gonic/gin"

	"fritakagp.app/backend/internal/http/dto"
	"fritakagp.app/backend/internal/http/handler"
	"fritakagp.app/backend/internal/model"
)

func ApplicationRouter[T model.Record, R dto.Request[T]](rg *gin.RouterGroup, h *handler.SubmissionHandler[T, R]) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
}

// ClaimRouter adds withdrawal on top of the application routes.
func ClaimRouter[T model.ClaimRecord, R dto.Request[T]](rg *gin.RouterGroup, h *handler.ClaimHandler[T, R]) {
	ApplicationRouter(rg, h.SubmissionHandler)
	rg.DELETE("/:id", h.Delete)
}
