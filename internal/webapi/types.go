package webapi

import (
	"github.com/benchcard/benchcard/internal/layout"
	"github.com/benchcard/benchcard/internal/models"
)

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ProviderInfo is one built-in provider family.
type ProviderInfo struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Color   string   `json:"color"`
}

// FontInfo is one selectable font.
type FontInfo struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ValidateResponse is returned for a chart that passed validation.
type ValidateResponse struct {
	Valid  bool                    `json:"valid"`
	Title  string                  `json:"title"`
	Models []models.ProcessedModel `json:"models"`
	Layout layout.Dimensions       `json:"layout"`
}

// ErrorResponse is returned for errors. Path and Line are set for input
// validation failures.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Path  string `json:"path,omitempty"`
	Line  int    `json:"line,omitempty"`
}
