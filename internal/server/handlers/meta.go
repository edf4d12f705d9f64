package handlers

import (
	"net/http"
	"time"

	"github.com/enjojoy/fredagent/internal/server/response"
)

// HandleAvailability handles GET /api/v1/availability.
// It reports whether the agent is ready to accept queries.
func (h *Handlers) HandleAvailability(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "available",
		"type":    "fred-economic-agent",
		"message": "FRED Economic Data Agent is ready to answer economic data queries",
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// inputField describes one field of the query input schema.
type inputField struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Required bool           `json:"required"`
	Data     inputFieldData `json:"data"`
}

type inputFieldData struct {
	Description string   `json:"description"`
	Placeholder string   `json:"placeholder"`
	Examples    []string `json:"examples"`
}

// inputSchema is the published schema for query input.
var inputSchema = map[string]any{
	"input_data": []inputField{
		{
			ID:       "text",
			Type:     "string",
			Name:     "Economic Data Query",
			Required: true,
			Data: inputFieldData{
				Description: "Your question about economic data from FRED (Federal Reserve Economic Data). " +
					"Ask about unemployment, inflation, GDP, interest rates, or any other economic indicators.",
				Placeholder: "e.g., What is the current unemployment rate? or Show me GDP growth data for 2023",
				Examples: []string{
					"What is the current inflation rate in the United States?",
					"Show me the unemployment rate over the last 12 months",
					"What is the current federal funds rate?",
					"Display GDP growth data for the last quarter",
				},
			},
		},
	},
}

// HandleInputSchema handles GET /api/v1/input_schema.
func (h *Handlers) HandleInputSchema(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, inputSchema)
}
