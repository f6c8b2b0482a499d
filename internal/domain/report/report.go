// Package report turns a reading into display-ready values: the headline
// percentage, the five-axis radar, the sector list and the share texts.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/wangcai/internal/domain/fortune"
)

// Radar geometry in SVG user units.
const (
	RadarSize   = 240.0
	radarCenter = RadarSize / 2
	radarRadius = RadarSize * 0.35
	labelRadius = RadarSize * 0.45
	fullMark    = 100.0
	maxBones    = 5
)

// Decorative radar axes that do not come from the reading.
const (
	CollieIQ    = 99.0
	MahjongLuck = 88.0
)

// Placeholder is shown in place of a talisman that has not arrived.
const Placeholder = "边牧正在给你画符，别催..."

// Axis is one spoke of the radar.
type Axis struct {
	Label  string
	Value  float64
	LabelX float64
	LabelY float64
}

// Radar is a ready-to-draw SVG radar chart.
type Radar struct {
	Axes   []Axis
	Points string   // data polygon
	Rings  []string // guide polygons at 25/50/75/100
	Size   float64
}

// SectorView is one recommended sector as displayed.
type SectorView struct {
	Name   string
	Reason string
	Bones  int
}

// BoneMarks renders the potential as bone emoji.
func (s SectorView) BoneMarks() string {
	return strings.Repeat("🦴", s.Bones)
}

// View is everything the result screen needs.
type View struct {
	Result        fortune.Result
	WealthPercent string
	Radar         Radar
	Sectors       []SectorView
	HasLuckyColor bool
	Image         fortune.ImageReference
	HasImage      bool
	Placeholder   string
	Share         Share
}

// Build maps a reading and its talisman to a View. It never fails: absent
// optional fields are reported through the Has* flags.
func Build(res fortune.Result, img fortune.ImageReference) View {
	v := View{
		Result:        res,
		WealthPercent: Percent(res.WealthLuck),
		Radar:         BuildRadar(res),
		HasLuckyColor: strings.TrimSpace(res.LuckyColor) != "",
		Image:         img,
		HasImage:      img.MIME() != "",
		Placeholder:   Placeholder,
		Share:         ResultShare(res),
	}
	v.Sectors = make([]SectorView, 0, len(res.RecommendedSectors))
	for _, s := range res.RecommendedSectors {
		v.Sectors = append(v.Sectors, SectorView{Name: s.Name, Reason: s.Reason, Bones: Bones(s.Potential)})
	}
	return v
}

// Percent renders a score the way the headline shows it: 72 -> "72%".
func Percent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// Bones rounds a sector potential into 0..5 marks.
func Bones(potential float64) int {
	if math.IsNaN(potential) {
		return 0
	}
	n := int(math.Round(potential))
	return max(0, min(maxBones, n))
}

// BuildRadar lays out the five axes clockwise from the top: wealth, career,
// overall, then the two fixed decorative values.
func BuildRadar(res fortune.Result) Radar {
	axes := []Axis{
		{Label: "横财命", Value: res.WealthLuck},
		{Label: "演员修养", Value: res.CareerLuck},
		{Label: "颜值即正义", Value: res.OverallLuck},
		{Label: "边牧智商", Value: CollieIQ},
		{Label: "麻将手气", Value: MahjongLuck},
	}
	values := make([]float64, len(axes))
	for i := range axes {
		axes[i].LabelX, axes[i].LabelY = point(i, len(axes), labelRadius)
		values[i] = clamp(axes[i].Value) / fullMark
	}

	r := Radar{Axes: axes, Points: polygon(values), Size: RadarSize}
	for _, frac := range []float64{0.25, 0.5, 0.75, 1} {
		ring := make([]float64, len(axes))
		for i := range ring {
			ring[i] = frac
		}
		r.Rings = append(r.Rings, polygon(ring))
	}
	return r
}

func polygon(fractions []float64) string {
	parts := make([]string, len(fractions))
	for i, f := range fractions {
		x, y := point(i, len(fractions), radarRadius*f)
		parts[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(parts, " ")
}

func point(i, n int, radius float64) (float64, float64) {
	angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	return radarCenter + radius*math.Cos(angle), radarCenter + radius*math.Sin(angle)
}

// clamp keeps drawn values on the chart; displayed numbers are not clamped.
func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(fullMark, v))
}
