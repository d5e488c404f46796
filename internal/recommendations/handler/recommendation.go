package handler

import (
	"net/http"

	"wanderlust/internal/recommendations/service"
	httputil "wanderlust/pkg/http"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type RecommendationHandler struct {
	service service.RecommendationService
	log     *logger.Logger
}

func NewRecommendationHandler(service service.RecommendationService, log *logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{service: service, log: log}
}

// Get always answers 200; an unavailable engine yields an empty list.
func (h *RecommendationHandler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	recs := h.service.ForUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err := httputil.WriteSuccess(w, recs); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RecommendationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/recommendations", middleware.RequireUser(h.Get))
}
