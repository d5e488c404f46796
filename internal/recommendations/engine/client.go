// Package engine talks to the external recommendation engine.
package engine

import (
	"context"
	"fmt"
	"time"

	"wanderlust/pkg/client"
	"wanderlust/pkg/model"
)

const recommendPath = "/smart-recommend"

type Engine interface {
	Recommend(ctx context.Context, userID string) ([]model.Recommendation, error)
}

type recommendRequest struct {
	UserID string `json:"userId"`
}

type HTTPEngine struct {
	http *client.HttpClient
}

func NewHTTPEngine(baseURL string, timeout time.Duration) *HTTPEngine {
	return &HTTPEngine{http: client.NewHttpClient(baseURL, timeout)}
}

func (e *HTTPEngine) Recommend(ctx context.Context, userID string) ([]model.Recommendation, error) {
	var recs []model.Recommendation
	if err := e.http.PostJSON(ctx, recommendPath, recommendRequest{UserID: userID}, &recs); err != nil {
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}
	if recs == nil {
		recs = []model.Recommendation{}
	}
	return recs, nil
}
