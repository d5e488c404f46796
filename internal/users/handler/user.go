package handler

import (
	"net/http"

	"wanderlust/internal/users/service"
	httputil "wanderlust/pkg/http"
	"wanderlust/pkg/logger"
	"wanderlust/pkg/middleware"
	"wanderlust/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	auth    service.AuthService
	profile service.ProfileService
	log     *logger.Logger
}

func NewUserHandler(auth service.AuthService, profile service.ProfileService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		auth:    auth,
		profile: profile,
		log:     log,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Signup", err)
		return
	}

	session, err := h.auth.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Signup", err)
		return
	}

	if err := httputil.WriteCreated(w, session, "Welcome to Wanderlust!"); err != nil {
		h.log.Error("failed to write created response", "handler", "Signup", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	session, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteSuccessMessage(w, session, "Welcome back to Wanderlust!"); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "operation", "WriteSuccessMessage", "error", err)
	}
}

func (h *UserHandler) Dashboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	dashboard, err := h.profile.Dashboard(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "Dashboard", err)
		return
	}

	if err := httputil.WriteSuccess(w, dashboard); err != nil {
		h.log.Error("failed to write success response", "handler", "Dashboard", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) ToggleWishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	state, err := h.profile.ToggleWishlist(r.Context(), middleware.UserIDFromContext(r.Context()), ps.ByName("listingId"))
	if err != nil {
		h.writeError(w, "ToggleWishlist", err)
		return
	}

	message := "Listing removed from your wishlist."
	if state.Wishlisted {
		message = "Listing added to your wishlist."
	}
	if err := httputil.WriteSuccessMessage(w, state, message); err != nil {
		h.log.Error("failed to write success response", "handler", "ToggleWishlist", "operation", "WriteSuccessMessage", "error", err)
	}
}

func (h *UserHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID := ps.ByName("listingId")
	if err := h.profile.RemoveFromWishlist(r.Context(), middleware.UserIDFromContext(r.Context()), listingID); err != nil {
		h.writeError(w, "RemoveFromWishlist", err)
		return
	}

	state := &model.WishlistState{ListingID: listingID, Wishlisted: false}
	if err := httputil.WriteSuccessMessage(w, state, "Listing removed from your wishlist."); err != nil {
		h.log.Error("failed to write success response", "handler", "RemoveFromWishlist", "operation", "WriteSuccessMessage", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/users/signup", h.Signup)
	router.POST("/api/v1/users/login", h.Login)
	router.GET("/api/v1/users/dashboard", middleware.RequireUser(h.Dashboard))
	router.POST("/api/v1/users/wishlist/:listingId", middleware.RequireUser(h.ToggleWishlist))
	router.DELETE("/api/v1/users/wishlist/:listingId", middleware.RequireUser(h.RemoveFromWishlist))
}
