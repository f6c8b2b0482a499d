// Package fortune defines the reading produced by the text model, the talisman
// image reference, the response schema and the prompts sent to both models.
package fortune

import (
	"encoding/base64"
	"strings"
)

// Sector is one recommended market sector.
type Sector struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	// Potential is meant to be 1..5 but the model is not held to it.
	Potential float64 `json:"potential"`
}

// Result is the structured reading returned by the text model.
type Result struct {
	WealthLuck         float64  `json:"wealthLuck"`
	OverallLuck        float64  `json:"overallLuck"`
	CareerLuck         float64  `json:"careerLuck"`
	Summary            string   `json:"summary"`
	WealthInsight      string   `json:"wealthInsight"`
	EconomicLogic      string   `json:"economicLogic"`
	RecommendedSectors []Sector `json:"recommendedSectors"`
	LuckyAdvice        string   `json:"luckyAdvice"`
	LuckyColor         string   `json:"luckyColor,omitempty"`
	LuckyNumber        string   `json:"luckyNumber"`
	LuckyDirection     string   `json:"luckyDirection"`
	TalismanPrompt     string   `json:"talismanPrompt"`
}

// DefaultImageMIME is used when the image part does not name its type.
const DefaultImageMIME = "image/png"

// ImageReference is a self-contained data: URI for the talisman image.
type ImageReference string

// NewImageReference builds a data URI from a mime type and a base64 payload.
func NewImageReference(mime, b64 string) ImageReference {
	if strings.TrimSpace(mime) == "" {
		mime = DefaultImageMIME
	}
	return ImageReference("data:" + mime + ";base64," + b64)
}

// IsZero reports whether no image has been set.
func (r ImageReference) IsZero() bool { return r == "" }

// MIME returns the media type of the reference, or "" if it is not a data URI.
func (r ImageReference) MIME() string {
	rest, ok := strings.CutPrefix(string(r), "data:")
	if !ok {
		return ""
	}
	mime, _, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return ""
	}
	return mime
}

// Bytes decodes the image payload.
func (r ImageReference) Bytes() ([]byte, error) {
	_, payload, ok := strings.Cut(string(r), ";base64,")
	if !ok {
		return nil, ErrNotDataURI
	}
	return base64.StdEncoding.DecodeString(payload)
}
