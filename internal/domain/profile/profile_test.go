package profile_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okian/wangcai/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

func validFields() profile.Fields {
	return profile.Fields{
		Zodiac:      "白羊座",
		CurrentMood: "元气满满",
		GlobalAnswers: profile.Answers{
			TechView:   "发财工具",
			EnergyView: "只进不出",
			MacroView:  "观望",
		},
	}
}

func TestNew(t *testing.T) {
	Convey("Given questionnaire fields", t, func() {
		Convey("When every enumerated answer is valid", func() {
			f := validFields()
			f.FinancialGoal = "  一个小目标  "
			p, err := profile.New(f)

			Convey("Then the profile exposes typed values", func() {
				So(err, ShouldBeNil)
				So(p.Zodiac(), ShouldEqual, profile.Aries)
				So(p.TechView(), ShouldEqual, profile.TechMoneyMaker)
				So(p.EnergyView(), ShouldEqual, profile.EnergyOnlyIn)
				So(p.MacroView(), ShouldEqual, profile.MacroWaitAndSee)
				So(p.CurrentMood(), ShouldEqual, "元气满满")
				So(p.FinancialGoal(), ShouldEqual, "一个小目标")
				So(p.DailyEvents(), ShouldEqual, "")
			})

			Convey("And Fields round-trips the submission", func() {
				f.FinancialGoal = "一个小目标"
				So(p.Fields(), ShouldResemble, f)
			})
		})

		Convey("When the zodiac is missing", func() {
			f := validFields()
			f.Zodiac = ""
			_, err := profile.New(f)

			Convey("Then it is rejected as invalid", func() {
				So(errors.Is(err, profile.ErrInvalidProfile), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "zodiac is required")
			})
		})

		Convey("When a choice is outside its set", func() {
			f := validFields()
			f.GlobalAnswers.MacroView = "梭哈"
			_, err := profile.New(f)

			Convey("Then the field is named in the error", func() {
				So(errors.Is(err, profile.ErrInvalidProfile), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "macroView")
			})
		})

		Convey("When free text is empty", func() {
			f := validFields()
			f.CurrentMood = ""
			_, err := profile.New(f)

			Convey("Then it is accepted", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestDefaults(t *testing.T) {
	Convey("Given the form defaults", t, func() {
		d := profile.Defaults()

		Convey("Then they match the initial form state and validate", func() {
			So(d.Zodiac, ShouldEqual, "白羊座")
			So(d.CurrentMood, ShouldEqual, "平静")
			So(d.GlobalAnswers, ShouldResemble, profile.Answers{TechView: "乐观", EnergyView: "平稳", MacroView: "观望"})
			_, err := profile.New(d)
			So(err, ShouldBeNil)
		})
	})
}

func TestEnums(t *testing.T) {
	Convey("Given the closed enumerations", t, func() {
		Convey("Then there are twelve signs with distinct labels", func() {
			seen := map[string]bool{}
			for _, z := range profile.Zodiacs() {
				So(z.Valid(), ShouldBeTrue)
				seen[z.String()] = true
			}
			So(len(profile.Zodiacs()), ShouldEqual, 12)
			So(len(seen), ShouldEqual, 12)
			So(profile.Pisces.String(), ShouldEqual, "双鱼座")
		})

		Convey("And zero or out-of-range values are invalid", func() {
			So(profile.Zodiac(0).Valid(), ShouldBeFalse)
			So(profile.Zodiac(13).Valid(), ShouldBeFalse)
			So(profile.TechView(9).String(), ShouldEqual, "invalid(9)")
		})

		Convey("And every choice parses back from its label", func() {
			for _, v := range profile.TechViews() {
				got, err := profile.ParseTechView(v.String())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, v)
			}
			for _, v := range profile.EnergyViews() {
				got, err := profile.ParseEnergyView(v.String())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, v)
			}
			for _, v := range profile.MacroViews() {
				got, err := profile.ParseMacroView(v.String())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, v)
			}
		})
	})
}

func TestMarshalJSON(t *testing.T) {
	Convey("Given a profile", t, func() {
		p, err := profile.New(validFields())
		So(err, ShouldBeNil)

		Convey("When encoded as JSON", func() {
			raw, err := json.Marshal(p)
			So(err, ShouldBeNil)

			Convey("Then labels are emitted, not ordinals", func() {
				So(string(raw), ShouldContainSubstring, `"zodiac":"白羊座"`)
				So(string(raw), ShouldContainSubstring, `"macroView":"观望"`)
			})
		})
	})
}
