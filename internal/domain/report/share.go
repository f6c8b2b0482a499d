package report

import (
	"strings"

	"github.com/okian/wangcai/internal/domain/fortune"
)

// Share is the payload handed to a native share sheet, plus what to copy to
// the clipboard when no share sheet exists.
type Share struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Notice string `json:"notice"`

	fallback string // contains {text} and {url}
}

// Fallback is the clipboard text for url.
func (s Share) Fallback(url string) string {
	return strings.NewReplacer("{text}", s.Text, "{url}", url).Replace(s.fallback)
}

// ResultShare brags about a finished reading.
func ResultShare(res fortune.Result) Share {
	return Share{
		Title:    "蛇年财运报告",
		Text:     "【边牧大师快报】我今天的财运高达" + Percent(res.WealthLuck) + "！大师点评：“" + res.Summary + "”。你也快来看看今年的发财神符长啥样！",
		Notice:   "发财报告已复制！快去群里凡尔赛一下～",
		fallback: "{text} \n点击测测：{url}",
	}
}

// InviteShare invites a friend from the welcome screen.
func InviteShare() Share {
	return Share{
		Title:    "蛇年财运旺旺占卜",
		Text:     "快来！这家的边牧大师算财运贼准，我已经领到发财神符了！",
		Notice:   "邀请函已复制到剪贴板，快去发给好兄弟！",
		fallback: "{text} 链接在这里：{url}",
	}
}
