// Package profile holds the questionnaire a user fills in before a reading.
package profile

import (
	"encoding/json"
	"strings"
)

// Answers is the wire shape of the three global-view questions.
type Answers struct {
	TechView   string `json:"techView"`
	EnergyView string `json:"energyView"`
	MacroView  string `json:"macroView"`
}

// Fields is the raw, unvalidated questionnaire as submitted by a form or client.
type Fields struct {
	Zodiac         string  `json:"zodiac"`
	CurrentMood    string  `json:"currentMood"`
	FinancialGoal  string  `json:"financialGoal"`
	RecentThoughts string  `json:"recentThoughts"`
	DailyEvents    string  `json:"dailyEvents"`
	GlobalAnswers  Answers `json:"globalAnswers"`
}

// UserProfile is a validated questionnaire. It has no setters; a new
// submission always builds a new value.
type UserProfile struct {
	zodiac         Zodiac
	currentMood    string
	financialGoal  string
	recentThoughts string
	dailyEvents    string
	techView       TechView
	energyView     EnergyView
	macroView      MacroView
}

// New validates f and builds a profile. Only presence and membership of the
// enumerated fields are checked; free text is kept as typed, minus
// surrounding whitespace.
func New(f Fields) (UserProfile, error) {
	z, err := ParseZodiac(strings.TrimSpace(f.Zodiac))
	if err != nil {
		return UserProfile{}, err
	}
	tech, err := ParseTechView(strings.TrimSpace(f.GlobalAnswers.TechView))
	if err != nil {
		return UserProfile{}, err
	}
	energy, err := ParseEnergyView(strings.TrimSpace(f.GlobalAnswers.EnergyView))
	if err != nil {
		return UserProfile{}, err
	}
	macro, err := ParseMacroView(strings.TrimSpace(f.GlobalAnswers.MacroView))
	if err != nil {
		return UserProfile{}, err
	}
	return UserProfile{
		zodiac:         z,
		currentMood:    strings.TrimSpace(f.CurrentMood),
		financialGoal:  strings.TrimSpace(f.FinancialGoal),
		recentThoughts: strings.TrimSpace(f.RecentThoughts),
		dailyEvents:    strings.TrimSpace(f.DailyEvents),
		techView:       tech,
		energyView:     energy,
		macroView:      macro,
	}, nil
}

// Defaults returns the values a fresh form starts from.
func Defaults() Fields {
	return Fields{
		Zodiac:      Aries.String(),
		CurrentMood: DefaultMood,
		GlobalAnswers: Answers{
			TechView:   TechOptimistic.String(),
			EnergyView: EnergySteady.String(),
			MacroView:  MacroWaitAndSee.String(),
		},
	}
}

func (p UserProfile) Zodiac() Zodiac         { return p.zodiac }
func (p UserProfile) CurrentMood() string    { return p.currentMood }
func (p UserProfile) FinancialGoal() string  { return p.financialGoal }
func (p UserProfile) RecentThoughts() string { return p.recentThoughts }
func (p UserProfile) DailyEvents() string    { return p.dailyEvents }
func (p UserProfile) TechView() TechView     { return p.techView }
func (p UserProfile) EnergyView() EnergyView { return p.energyView }
func (p UserProfile) MacroView() MacroView   { return p.macroView }

// Fields converts the profile back to its wire shape, e.g. to pre-fill a form.
func (p UserProfile) Fields() Fields {
	return Fields{
		Zodiac:         p.zodiac.String(),
		CurrentMood:    p.currentMood,
		FinancialGoal:  p.financialGoal,
		RecentThoughts: p.recentThoughts,
		DailyEvents:    p.dailyEvents,
		GlobalAnswers: Answers{
			TechView:   p.techView.String(),
			EnergyView: p.energyView.String(),
			MacroView:  p.macroView.String(),
		},
	}
}

// MarshalJSON encodes the profile in its wire shape.
func (p UserProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Fields())
}
