package tools

import (
	"context"

	"github.com/jamesprial/hr-mcp-gateway/internal/hr"
	"github.com/jamesprial/hr-mcp-gateway/internal/mcp"
)

// LeaveWeightsURI names the leave weight table resource.
const LeaveWeightsURI = "hr://policy/leave-weights"

// LeaveWeights is the content of the leave weight resource.
type LeaveWeights struct {
	Weights       map[string]float64 `json:"weights"`
	DefaultWeight float64            `json:"default_weight"`
}

type leaveWeightsResource struct{}

func (leaveWeightsResource) Read(ctx context.Context) (*mcp.Resource, error) {
	return mcp.JSONResource(LeaveWeightsURI, LeaveWeights{
		Weights:       hr.LeaveWeights,
		DefaultWeight: hr.LeaveWeight(""),
	})
}

func (leaveWeightsResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         LeaveWeightsURI,
		Name:        "Leave weights",
		Description: "Days deducted from the leave balance per approved leave type",
		MimeType:    "application/json",
	}
}
