package services

import (
	"context"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
)

// Stat is one metric record
type Stat struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// StatsAck is the response of POST /api/v1/stats
type StatsAck struct {
	*apiclient.Result
	Accepted int
}

// Dashboard wraps the private metrics dashboard
type Dashboard struct {
	client *apiclient.Client
}

// NewDashboard creates a Dashboard wrapper
func NewDashboard(c *apiclient.Client) *Dashboard {
	return &Dashboard{client: c}
}

// SubmitStats sends a batch of metrics with the dashboard bearer key
func (d *Dashboard) SubmitStats(ctx context.Context, key string, stats []Stat) (*StatsAck, error) {
	result, err := d.client.Post(ctx, apiPrefix+"/stats", stats, apiclient.BearerAuth(key))
	if err != nil {
		return nil, err
	}
	ack := &StatsAck{Result: result}
	if !result.IsError {
		ack.Accepted = int(result.Get("accepted").Int())
	}
	return ack, nil
}
