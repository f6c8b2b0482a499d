package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"slices"

	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/report"
	"github.com/okian/wangcai/internal/domain/workflow"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	pageTitle      = "蛇年财运旺旺占卜"
	refreshSeconds = 2
)

type shareView struct {
	Title    string
	Text     string
	Notice   string
	URL      string
	Fallback string
}

type formView struct {
	Fields      profile.Fields
	CustomMood  bool
	Zodiacs     []string
	TechViews   []string
	EnergyViews []string
	MacroViews  []string
	Moods       []string
}

type page struct {
	Step           workflow.Step
	Title          string
	Error          string
	RefreshSeconds int
	Form           formView
	Report         *report.View
	Talisman       template.URL // trusted: built from base64 returned by the image model
	Share          shareView
}

func parsePages() map[workflow.Step]*template.Template {
	pages := make(map[workflow.Step]*template.Template, 4)
	for _, step := range []workflow.Step{workflow.StepWelcome, workflow.StepForm, workflow.StepLoading, workflow.StepResult} {
		pages[step] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(step)+".html"))
	}
	return pages
}

func newForm(f profile.Fields) formView {
	moods := withDefaultMood()
	return formView{
		Fields:      f,
		CustomMood:  f.CurrentMood != "" && !slices.Contains(moods, f.CurrentMood),
		Zodiacs:     labels(profile.Zodiacs()),
		TechViews:   labels(profile.TechViews()),
		EnergyViews: labels(profile.EnergyViews()),
		MacroViews:  labels(profile.MacroViews()),
		Moods:       moods,
	}
}

// withDefaultMood puts the pre-filled mood first among the presets.
func withDefaultMood() []string {
	return append([]string{profile.DefaultMood}, profile.MoodPresets...)
}

func labels[T fmt.Stringer](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func newShare(s report.Share, link string) shareView {
	return shareView{Title: s.Title, Text: s.Text, Notice: s.Notice, URL: link, Fallback: s.Fallback(link)}
}

// pageFor maps a snapshot to what its screen shows.
func pageFor(snap workflow.Snapshot, link string) page {
	p := page{Step: snap.Step, Title: pageTitle, Error: snap.Error}
	switch snap.Step {
	case workflow.StepWelcome:
		p.Share = newShare(report.InviteShare(), link)
	case workflow.StepForm:
		p.Form = newForm(snap.FormFields())
	case workflow.StepLoading:
		p.RefreshSeconds = refreshSeconds
	case workflow.StepResult:
		if snap.Result != nil {
			v := report.Build(*snap.Result, snap.Talisman)
			p.Report = &v
			p.Talisman = template.URL(snap.Talisman) //nolint:gosec // data URI produced by the image client
			p.Share = newShare(v.Share, link)
		}
	}
	return p
}

func (h *Handler) render(w http.ResponseWriter, status int, p page) error {
	tmpl, ok := h.pages[p.Step]
	if !ok {
		return fmt.Errorf("%w: no page for step %q", ErrRender, p.Step)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}
