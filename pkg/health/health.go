package health

import (
	"context"
	"net/http"
	"time"

	httputil "wanderlust/pkg/http"
	"wanderlust/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const readyTimeout = 2 * time.Second

// Checker is one dependency that must answer before the service is ready.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type Response struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

type Handler struct {
	checkers []Checker
	log      *logger.Logger
}

func NewHandler(log *logger.Logger, checkers ...Checker) *Handler {
	return &Handler{
		checkers: checkers,
		log:      log,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, Response{Status: "ok"}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Health", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	resp := Response{Status: "ready", Dependencies: make(map[string]string, len(h.checkers))}

	for _, c := range h.checkers {
		if err := c.Check(ctx); err != nil {
			h.log.Error("Dependency health check failed",
				"dependency", c.Name(),
				"error", err,
				"path", r.URL.Path,
			)
			resp.Dependencies[c.Name()] = "error"
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Dependencies[c.Name()] = "ok"
	}

	if err := httputil.WriteJSON(w, status, resp); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Ready", "operation", "WriteJSON", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

type mongoChecker struct{ client *mongo.Client }

func MongoChecker(client *mongo.Client) Checker { return mongoChecker{client: client} }

func (mongoChecker) Name() string { return "mongo" }

func (c mongoChecker) Check(ctx context.Context) error { return c.client.Ping(ctx, nil) }

type redisChecker struct{ client *redis.Client }

func RedisChecker(client *redis.Client) Checker { return redisChecker{client: client} }

func (redisChecker) Name() string { return "redis" }

func (c redisChecker) Check(ctx context.Context) error { return c.client.Ping(ctx).Err() }
