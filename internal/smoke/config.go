package smoke

import (
	"time"

	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Sessions     int           // Number of sessions to drive end to end
	Workers      int           // Number of sessions in flight at once
	Timeout      time.Duration // HTTP request timeout
	PollInterval time.Duration // Delay between session polls while loading
	WaitTimeout  time.Duration // Longest a single session may stay loading
	Verbose      bool          // Print every session outcome
	Logger       logger.Logger // Run logger; nil discards
}

// Session mirrors the JSON session representation of the API.
type Session struct {
	ID       string          `json:"id"`
	Step     workflow.Step   `json:"step"`
	Error    string          `json:"error,omitempty"`
	Profile  *profile.Fields `json:"profile,omitempty"`
	Result   *Result         `json:"result,omitempty"`
	Talisman string          `json:"talisman,omitempty"`
	Cycle    uint64          `json:"cycle"`
}

// Result is the subset of a reading the smoke run checks.
type Result struct {
	WealthLuck  float64 `json:"wealthLuck"`
	OverallLuck float64 `json:"overallLuck"`
	CareerLuck  float64 `json:"careerLuck"`
	Summary     string  `json:"summary"`
	LuckyNumber string  `json:"luckyNumber"`
	Sectors     []struct {
		Name      string  `json:"name"`
		Potential float64 `json:"potential"`
	} `json:"recommendedSectors"`
}

// Share mirrors the share payload of the API.
type Share struct {
	Title    string `json:"title"`
	Text     string `json:"text"`
	URL      string `json:"url"`
	Fallback string `json:"fallback"`
}

// Options mirrors the questionnaire choices of the API.
type Options struct {
	Zodiacs     []string       `json:"zodiacs"`
	TechViews   []string       `json:"techViews"`
	EnergyViews []string       `json:"energyViews"`
	MacroViews  []string       `json:"macroViews"`
	Moods       []string       `json:"moods"`
	Defaults    profile.Fields `json:"defaults"`
}

// Stats holds run statistics.
type Stats struct {
	Sessions     int
	Readings     int // reached the result step
	WithTalisman int // readings that carried an image
	Failed       int // returned to the form with the failure message
	Errors       int // transport or protocol errors
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
