// ABOUTME: MCP resource implementations for the weather store.
// ABOUTME: Provides the weather://latest snapshot of current conditions.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// weather://latest - current conditions for every tracked city
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "weather://latest",
		Name:        "Latest Weather",
		Description: "Current conditions for every tracked city",
		MIMEType:    "application/json",
	}, s.handleLatestResource)
}

// Resource handlers

func (s *Server) handleLatestResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	latest, err := s.repo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest weather: %w", err)
	}

	result := map[string]interface{}{
		"generated_at": time.Now().UTC().Format(time.RFC3339),
		"cities":       latest,
		"count":        len(latest),
	}

	if len(latest) > 0 {
		warmest, coldest := latest[0], latest[0]
		for _, row := range latest[1:] {
			if row.TemperatureCelsius > warmest.TemperatureCelsius {
				warmest = row
			}
			if row.TemperatureCelsius < coldest.TemperatureCelsius {
				coldest = row
			}
		}
		result["warmest"] = map[string]interface{}{
			"city":                warmest.CityDisplayName(),
			"temperature_celsius": warmest.TemperatureCelsius,
		}
		result["coldest"] = map[string]interface{}{
			"city":                coldest.CityDisplayName(),
			"temperature_celsius": coldest.TemperatureCelsius,
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "weather://latest",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
