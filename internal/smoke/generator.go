package smoke

import (
	"math/rand/v2"

	"github.com/okian/wangcai/internal/domain/profile"
)

var (
	goals = []string{"攒够首付", "年底加薪", "基金回本", "", "财务自由"}
	notes = []string{"最近在看AI板块", "", "想换工作", "房贷压力有点大"}
)

// randomFields builds a questionnaire answer from the offered choices.
// Empty choice lists fall back to the defaults.
func randomFields(opts Options) profile.Fields {
	f := opts.Defaults
	f.Zodiac = pick(opts.Zodiacs, f.Zodiac)
	f.CurrentMood = pick(opts.Moods, f.CurrentMood)
	f.FinancialGoal = pick(goals, "")
	f.RecentThoughts = pick(notes, "")
	f.GlobalAnswers.TechView = pick(opts.TechViews, f.GlobalAnswers.TechView)
	f.GlobalAnswers.EnergyView = pick(opts.EnergyViews, f.GlobalAnswers.EnergyView)
	f.GlobalAnswers.MacroView = pick(opts.MacroViews, f.GlobalAnswers.MacroView)
	return f
}

func pick(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[rand.IntN(len(values))] //nolint:gosec // test data
}
