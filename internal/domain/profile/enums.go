package profile

import "fmt"

// Zodiac is one of the twelve western zodiac signs, labelled in Chinese.
type Zodiac uint8

// Zodiac signs in calendar order.
const (
	Aries Zodiac = iota + 1
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

var zodiacLabels = []string{"", "白羊座", "金牛座", "双子座", "巨蟹座", "狮子座", "处女座", "天秤座", "天蝎座", "射手座", "摩羯座", "水瓶座", "双鱼座"}

// TechView answers "is AI your ATM or your shredder".
type TechView uint8

// TechView choices; Optimistic is the form default.
const (
	TechOptimistic TechView = iota + 1
	TechMoneyMaker
	TechScam
	TechNeedsPractice
)

var techLabels = []string{"", "乐观", "发财工具", "骗钱玩意", "还得练练"}

// EnergyView answers where the wallet is heading.
type EnergyView uint8

// EnergyView choices; Steady is the form default.
const (
	EnergySteady EnergyView = iota + 1
	EnergyBuyTheWorld
	EnergyOnlyIn
	EnergyCasual
)

var energyLabels = []string{"", "平稳", "买遍全球", "只进不出", "随便花花"}

// MacroView captures consumer confidence.
type MacroView uint8

// MacroView choices; WaitAndSee is the form default.
const (
	MacroWaitAndSee MacroView = iota + 1
	MacroSpend
	MacroTighten
)

var macroLabels = []string{"", "观望", "买买买", "捂紧钱包"}

// MoodPresets are the one-tap moods offered by the form. Mood itself is free text.
var MoodPresets = []string{"元气满满", "人间清醒", "野心勃勃", "只想躺平", "急需暴富", "信心爆棚"}

// DefaultMood is the mood pre-filled on a fresh form.
const DefaultMood = "平静"

func (z Zodiac) String() string     { return label(zodiacLabels, z) }
func (v TechView) String() string   { return label(techLabels, v) }
func (v EnergyView) String() string { return label(energyLabels, v) }
func (v MacroView) String() string  { return label(macroLabels, v) }

// Valid reports whether z is one of the declared signs.
func (z Zodiac) Valid() bool     { return valid(zodiacLabels, z) }
func (v TechView) Valid() bool   { return valid(techLabels, v) }
func (v EnergyView) Valid() bool { return valid(energyLabels, v) }
func (v MacroView) Valid() bool  { return valid(macroLabels, v) }

// ParseZodiac maps a label such as 白羊座 to its sign.
func ParseZodiac(s string) (Zodiac, error) { return parse[Zodiac]("zodiac", zodiacLabels, s) }

// ParseTechView maps a label to its choice.
func ParseTechView(s string) (TechView, error) { return parse[TechView]("techView", techLabels, s) }

// ParseEnergyView maps a label to its choice.
func ParseEnergyView(s string) (EnergyView, error) {
	return parse[EnergyView]("energyView", energyLabels, s)
}

// ParseMacroView maps a label to its choice.
func ParseMacroView(s string) (MacroView, error) {
	return parse[MacroView]("macroView", macroLabels, s)
}

// Zodiacs lists every sign in order.
func Zodiacs() []Zodiac { return all[Zodiac](zodiacLabels) }

// TechViews lists every TechView choice.
func TechViews() []TechView { return all[TechView](techLabels) }

// EnergyViews lists every EnergyView choice.
func EnergyViews() []EnergyView { return all[EnergyView](energyLabels) }

// MacroViews lists every MacroView choice.
func MacroViews() []MacroView { return all[MacroView](macroLabels) }

func label[T ~uint8](labels []string, v T) string {
	if int(v) <= 0 || int(v) >= len(labels) {
		return fmt.Sprintf("invalid(%d)", uint8(v))
	}
	return labels[v]
}

func valid[T ~uint8](labels []string, v T) bool {
	return int(v) > 0 && int(v) < len(labels)
}

func parse[T ~uint8](field string, labels []string, s string) (T, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidProfile, field)
	}
	for i := 1; i < len(labels); i++ {
		if labels[i] == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidProfile, field, s)
}

func all[T ~uint8](labels []string) []T {
	out := make([]T, 0, len(labels)-1)
	for i := 1; i < len(labels); i++ {
		out = append(out, T(i))
	}
	return out
}
