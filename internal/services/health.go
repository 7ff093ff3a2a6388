package services

import (
	"context"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
)

// HealthPath is served by every HNR service
const HealthPath = apiPrefix + "/health"

// Health is the response of GET /api/v1/health
type Health struct {
	*apiclient.Result
	Status string
}

// OK reports whether the service answered with status "ok"
func (h *Health) OK() bool {
	return !h.IsError && h.Status == "ok"
}

// CheckHealth queries the health endpoint of the service behind c
func CheckHealth(ctx context.Context, c *apiclient.Client) (*Health, error) {
	result, err := c.Get(ctx, HealthPath)
	if err != nil {
		return nil, err
	}
	return &Health{Result: result, Status: result.String("status")}, nil
}
