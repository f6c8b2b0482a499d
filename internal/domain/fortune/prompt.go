package fortune

import (
	"strings"
	"text/template"

	"github.com/okian/wangcai/internal/domain/profile"
)

var fortunePrompt = template.Must(template.New("fortune").Parse(`你是一位融合了“新年毒舌占卜师”与“智商200边牧”性格的 AI 财富大师。
现在是农历蛇年。你的性格：极其聪明、说话带刺但心怀红包、幽默俏皮、喜欢用互联网梗、极度崇拜边牧。
请根据以下输入，为用户提供一份今日财运报告。

【用户信息】
- 星座: {{.Zodiac}}
- 此时此刻的心情: {{.CurrentMood}} (请在返回的 summary 中先针对心情来一句现代风格的犀利点评)
- 发财小目标: {{.FinancialGoal}}
- 脑子里的想法: {{.RecentThoughts}}
- 今日头等大事: {{.DailyEvents}}

【全球格局观点 (用户的直觉)】
- 科技/AI观: {{.GlobalAnswers.TechView}}
- 钱包动向: {{.GlobalAnswers.EnergyView}}
- 消费信心: {{.GlobalAnswers.MacroView}}

【任务目标】
1. 运用“边牧级”的逻辑思维，分析这种心态和当前的经济周期。
2. 结合新年氛围，给出财运、事业、综合评分 (0-100)。
3. 提供 2-3 个潜力板块，潜力值为 1-5 的整数，推荐理由要“毒舌”且“精准”（例如：推荐新能源，可以说“因为边牧都知道未来是电动的，而你还想烧煤”）。
4. 对今日大事给出“锦囊妙计”。
5. 语气要像个在春晚上演脱口秀的智库专家。

输出必须为 JSON 格式。
`))

const talismanTemplate = `A stylish, funny, and high-tech Chinese New Year prosperity mascot.
The main character is a smart Border Collie wearing a trendy red satin puffer jacket with gold zippers and cool sunglasses.
The dog is winking and holding a holographic gold ingot.
Background: Cyberpunk-style traditional Chinese lanterns, neon signs saying 'RICH' and 'LUCKY', vibrant fireworks, and lucky clouds.
Style: Professional 3D cartoon (like Zootopia style), high saturation reds and golds, 8k, cinematic pop art lighting. Details: `

// BuildFortunePrompt renders the text-model prompt with every profile field
// embedded verbatim.
func BuildFortunePrompt(p profile.UserProfile) string {
	var b strings.Builder
	// The template only reads string fields; Execute cannot fail on this data.
	_ = fortunePrompt.Execute(&b, p.Fields())
	return b.String()
}

// BuildTalismanPrompt appends detail to the fixed mascot description.
func BuildTalismanPrompt(detail string) string {
	return talismanTemplate + strings.TrimSpace(detail) + "."
}
