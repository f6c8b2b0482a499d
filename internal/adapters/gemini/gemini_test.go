package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/okian/wangcai/internal/adapters/gemini"
	"github.com/okian/wangcai/internal/domain/fortune"
	"github.com/okian/wangcai/internal/domain/profile"
	. "github.com/smartystreets/goconvey/convey"
)

const readingJSON = `{"wealthLuck":72,"overallLuck":60,"careerLuck":55,"summary":"元气满满，钱包空空",
"wealthInsight":"小财","economicLogic":"降息","recommendedSectors":[{"name":"新能源","reason":"电动","potential":4},
{"name":"AI","reason":"工具","potential":5}],"luckyAdvice":"少点外卖","luckyNumber":"8","luckyDirection":"东南",
"talismanPrompt":"collie with milk tea"}`

// recorder is a fake Gemini endpoint that captures the last request.
type recorder struct {
	mu     sync.Mutex
	path   string
	apiKey string
	body   map[string]any
	status int
	reply  string
	delay  time.Duration
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.path = req.URL.Path
	r.apiKey = req.Header.Get("x-goog-api-key")
	r.body = nil
	_ = json.NewDecoder(req.Body).Decode(&r.body)
	status, reply, delay := r.status, r.reply, r.delay
	r.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-req.Context().Done():
			return
		}
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(reply))
}

func (r *recorder) respond(status int, reply string, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status, r.reply, r.delay = status, reply, delay
}

func (r *recorder) last() (path, apiKey string, body map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path, r.apiKey, r.body
}

func textReply(text string) string {
	b, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": text}}},
			"finishReason": "STOP",
		}},
	})
	return string(b)
}

func exampleProfile() profile.UserProfile {
	p, err := profile.New(profile.Fields{
		Zodiac:      "白羊座",
		CurrentMood: "元气满满",
		GlobalAnswers: profile.Answers{
			TechView:   "发财工具",
			EnergyView: "只进不出",
			MacroView:  "观望",
		},
	})
	if err != nil {
		panic(err)
	}
	return p
}

func TestFortuneClient(t *testing.T) {
	Convey("Given a fake text model", t, func() {
		rec := &recorder{reply: textReply(readingJSON)}
		srv := httptest.NewServer(rec)
		defer srv.Close()

		client := gemini.New("secret", gemini.WithBaseURL(srv.URL+"/"))
		fc := gemini.NewFortuneClient(client, "")
		ctx := context.Background()

		Convey("When generating a reading", func() {
			res, err := fc.Generate(ctx, exampleProfile())

			Convey("Then the parsed result is returned", func() {
				So(err, ShouldBeNil)
				So(res.WealthLuck, ShouldEqual, 72.0)
				So(res.LuckyColor, ShouldEqual, "")
				So(len(res.RecommendedSectors), ShouldEqual, 2)
				So(res.RecommendedSectors[1].Name, ShouldEqual, "AI")
			})

			Convey("And the request targets the text model with the key header", func() {
				path, apiKey, _ := rec.last()
				So(path, ShouldEqual, "/v1beta/models/gemini-3-pro-preview:generateContent")
				So(apiKey, ShouldEqual, "secret")
			})

			Convey("And it asks for JSON under the response schema", func() {
				_, _, body := rec.last()
				cfg := body["generationConfig"].(map[string]any)
				So(cfg["responseMimeType"], ShouldEqual, "application/json")
				schema := cfg["responseSchema"].(map[string]any)
				So(schema["type"], ShouldEqual, "OBJECT")
				So(schema["required"], ShouldNotContain, "luckyColor")
			})

			Convey("And the prompt embeds the profile verbatim", func() {
				_, _, body := rec.last()
				contents := body["contents"].([]any)
				parts := contents[0].(map[string]any)["parts"].([]any)
				prompt := parts[0].(map[string]any)["text"].(string)
				for _, want := range []string{"白羊座", "元气满满", "发财工具", "只进不出", "观望"} {
					So(prompt, ShouldContainSubstring, want)
				}
			})
		})

		Convey("When the model answers with non-JSON text", func() {
			rec.respond(0, textReply("抱歉，边牧去遛弯了"), 0)
			_, err := fc.Generate(ctx, exampleProfile())

			Convey("Then a text GenerationError is returned", func() {
				ge, ok := fortune.AsGenerationError(err)
				So(ok, ShouldBeTrue)
				So(ge.Kind, ShouldEqual, fortune.KindText)
				So(errors.Is(err, fortune.ErrMalformedResponse), ShouldBeTrue)
			})
		})

		Convey("When the service answers 503", func() {
			rec.respond(http.StatusServiceUnavailable, `{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`, 0)
			_, err := fc.Generate(ctx, exampleProfile())

			Convey("Then the status and message are wrapped", func() {
				So(errors.Is(err, gemini.ErrUnexpectedStatus), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "overloaded")
				_, ok := fortune.AsGenerationError(err)
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the prompt is blocked", func() {
			rec.respond(0, `{"promptFeedback":{"blockReason":"SAFETY"}}`, 0)
			_, err := fc.Generate(ctx, exampleProfile())

			Convey("Then ErrBlocked is reported", func() {
				So(errors.Is(err, gemini.ErrBlocked), ShouldBeTrue)
			})
		})

		Convey("When there are no candidates", func() {
			rec.respond(0, `{"candidates":[]}`, 0)
			_, err := fc.Generate(ctx, exampleProfile())

			Convey("Then ErrNoCandidates is reported", func() {
				So(errors.Is(err, gemini.ErrNoCandidates), ShouldBeTrue)
			})
		})

		Convey("When the caller's deadline passes first", func() {
			rec.respond(0, textReply(readingJSON), time.Second)
			short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			_, err := fc.Generate(short, exampleProfile())

			Convey("Then the deadline error surfaces", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}

func TestTalismanClient(t *testing.T) {
	Convey("Given a fake image model", t, func() {
		rec := &recorder{}
		srv := httptest.NewServer(rec)
		defer srv.Close()

		tc := gemini.NewTalismanClient(gemini.New("secret", gemini.WithBaseURL(srv.URL)), "")
		ctx := context.Background()

		Convey("When the response has text then an inline image", func() {
			rec.respond(0, `{"candidates":[{"content":{"parts":[{"text":"here you go"},
				{"inlineData":{"mimeType":"image/jpeg","data":"QUJD"}},
				{"inlineData":{"mimeType":"image/png","data":"WFla"}}]}}]}`, 0)
			img, err := tc.GenerateImage(ctx, "collie with milk tea")

			Convey("Then the first inline image becomes a data URI", func() {
				So(err, ShouldBeNil)
				So(string(img), ShouldEqual, "data:image/jpeg;base64,QUJD")
			})

			Convey("And the request asks for a square image of the full prompt", func() {
				path, _, body := rec.last()
				So(path, ShouldEqual, "/v1beta/models/gemini-2.5-flash-image:generateContent")
				cfg := body["generationConfig"].(map[string]any)
				So(cfg["imageConfig"].(map[string]any)["aspectRatio"], ShouldEqual, "1:1")
				So(cfg["responseModalities"], ShouldResemble, []any{"IMAGE"})
				raw, _ := json.Marshal(body["contents"])
				So(string(raw), ShouldContainSubstring, "Details: collie with milk tea.")
			})
		})

		Convey("When the inline image has no mime type", func() {
			rec.respond(0, `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"QUJD"}}]}}]}`, 0)
			img, err := tc.GenerateImage(ctx, "x")

			Convey("Then png is assumed", func() {
				So(err, ShouldBeNil)
				So(string(img), ShouldEqual, "data:image/png;base64,QUJD")
			})
		})

		Convey("When the inline image is not valid base64", func() {
			rec.respond(0, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"not base64!"}}]}}]}`, 0)
			img, err := tc.GenerateImage(ctx, "x")

			Convey("Then it is an image generation failure", func() {
				So(img, ShouldEqual, fortune.ImageReference(""))
				ge, ok := fortune.AsGenerationError(err)
				So(ok, ShouldBeTrue)
				So(ge.Kind, ShouldEqual, fortune.KindImage)
			})
		})

		Convey("When the response has no image part", func() {
			rec.respond(0, textReply("I cannot draw today"), 0)
			_, err := tc.GenerateImage(ctx, "x")

			Convey("Then it fails with the talisman message", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldEqual, "Talisman generation failed")
				ge, ok := fortune.AsGenerationError(err)
				So(ok, ShouldBeTrue)
				So(ge.Kind, ShouldEqual, fortune.KindImage)
			})
		})
	})
}

func TestMissingAPIKey(t *testing.T) {
	Convey("Given a client without credentials", t, func() {
		client := gemini.New("  ", gemini.WithHTTPClient(&http.Client{}))

		Convey("When calling the model", func() {
			_, err := gemini.NewTalismanClient(client, "m").GenerateImage(context.Background(), "x")

			Convey("Then no request is made and the error says why", func() {
				So(errors.Is(err, gemini.ErrMissingAPIKey), ShouldBeTrue)
				So(strings.HasPrefix(err.Error(), "image generation failed"), ShouldBeTrue)
			})
		})
	})
}
