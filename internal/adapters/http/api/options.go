package api

import (
	"fmt"
	"net/http"

	"github.com/okian/wangcai/internal/domain/profile"
)

type optionsResponse struct {
	Zodiacs     []string       `json:"zodiacs"`
	TechViews   []string       `json:"techViews"`
	EnergyViews []string       `json:"energyViews"`
	MacroViews  []string       `json:"macroViews"`
	Moods       []string       `json:"moods"`
	Defaults    profile.Fields `json:"defaults"`
}

// OptionsHandler lists the closed choices of the questionnaire.
type OptionsHandler struct {
	body optionsResponse
}

// NewOptionsHandler creates a new options handler.
func NewOptionsHandler() *OptionsHandler {
	return &OptionsHandler{body: optionsResponse{
		Zodiacs:     labels(profile.Zodiacs()),
		TechViews:   labels(profile.TechViews()),
		EnergyViews: labels(profile.EnergyViews()),
		MacroViews:  labels(profile.MacroViews()),
		Moods:       append([]string(nil), profile.MoodPresets...),
		Defaults:    profile.Defaults(),
	}}
}

// HandleOptions handles GET /api/options.
func (h *OptionsHandler) HandleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.body)
}

func labels[T fmt.Stringer](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
