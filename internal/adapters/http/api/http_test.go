package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/wangcai/internal/adapters/http/api"
	"github.com/okian/wangcai/internal/adapters/repository"
	"github.com/okian/wangcai/internal/domain/fortune"
	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/report"
	"github.com/okian/wangcai/internal/domain/workflow"
	. "github.com/smartystreets/goconvey/convey"
)

const sessionID = "5b0e5a2c-1111-4c9b-8d0e-6f1a2b3c4d5e"

// mockDependencies keeps one orchestrator per id and completes every
// submission synchronously with a scripted outcome.
type mockDependencies struct {
	mu       sync.Mutex
	sessions map[string]*workflow.Orchestrator
	outcome  workflow.Outcome
	failWith error
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		sessions: map[string]*workflow.Orchestrator{sessionID: workflow.NewOrchestrator()},
		outcome: workflow.Success(
			fortune.Result{WealthLuck: 72, Summary: "稳中带皮"},
			fortune.NewImageReference("image/png", "QUJD"),
		),
	}
}

func (m *mockDependencies) get(id string) (*workflow.Orchestrator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	orch, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return orch, nil
}

func (m *mockDependencies) CreateSession(context.Context) (string, workflow.Snapshot, error) {
	if m.failWith != nil {
		return "", workflow.Snapshot{}, m.failWith
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("00000000-0000-4000-8000-%012d", len(m.sessions))
	orch := workflow.NewOrchestrator()
	m.sessions[id] = orch
	return id, orch.Snapshot(), nil
}

func (m *mockDependencies) Session(_ context.Context, id string) (workflow.Snapshot, error) {
	orch, err := m.get(id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	return orch.Snapshot(), nil
}

func (m *mockDependencies) StartSession(_ context.Context, id string) (workflow.Snapshot, error) {
	orch, err := m.get(id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if err := orch.Start(); err != nil {
		return orch.Snapshot(), err
	}
	return orch.Snapshot(), nil
}

func (m *mockDependencies) Submit(ctx context.Context, id string, f profile.Fields) (workflow.Snapshot, error) { //nolint:gocritic // mirrors the service signature
	orch, err := m.get(id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	p, err := profile.New(f)
	if err != nil {
		return orch.Snapshot(), err
	}
	cycle, err := orch.Submit(p)
	if err != nil {
		return orch.Snapshot(), err
	}
	_ = orch.Complete(ctx, cycle, m.outcome)
	return orch.Snapshot(), nil
}

func (m *mockDependencies) Reset(_ context.Context, id string) (workflow.Snapshot, error) {
	orch, err := m.get(id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if err := orch.Reset(); err != nil {
		return orch.Snapshot(), err
	}
	return orch.Snapshot(), nil
}

func (m *mockDependencies) Share(ctx context.Context, id string) (report.Share, error) {
	snap, err := m.Session(ctx, id)
	if err != nil {
		return report.Share{}, err
	}
	if snap.Result == nil {
		return report.Share{}, workflow.ErrInvalidTransition
	}
	return report.ResultShare(*snap.Result), nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	stats := &mockStatsProvider{stats: map[string]interface{}{"started": true, "workerCount": 4}}
	api.NewServer(deps, stats, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

const validForm = `{"zodiac":"白羊座","currentMood":"元气满满","financialGoal":"","recentThoughts":"",
"dailyEvents":"","globalAnswers":{"techView":"乐观","energyView":"平稳","macroView":"买买买"}}`

func TestServer_Operational(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(newMockDependencies())

		Convey("Then the health endpoint serves prometheus text", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "wangcai_")
		})

		Convey("And stats come from the provider", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["workerCount"], ShouldEqual, 4.0)
		})

		Convey("And options list the closed choices", func() {
			w := do(mux, http.MethodGet, "/api/options", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["macroViews"], ShouldResemble, []any{"观望", "买买买", "捂紧钱包"})
			So(len(body["zodiacs"].([]any)), ShouldEqual, 12)
			So(body["defaults"].(map[string]any)["currentMood"], ShouldEqual, "平静")
		})

		Convey("And a wrong method is refused", func() {
			w := do(mux, http.MethodPost, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestServer_Sessions(t *testing.T) {
	Convey("Given a session on the welcome screen", t, func() {
		deps := newMockDependencies()
		mux := newMux(deps, api.WithPublicURL("https://wangcai.example/"))
		base := "/api/sessions/" + sessionID

		Convey("When a new session is created", func() {
			w := do(mux, http.MethodPost, "/api/sessions", "")

			Convey("Then it is 201 with id, location and welcome step", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				body := decode(w)
				So(body["step"], ShouldEqual, "welcome")
				So(w.Header().Get("Location"), ShouldEqual, "/api/sessions/"+body["id"].(string))
			})
		})

		Convey("When submitting before starting", func() {
			w := do(mux, http.MethodPost, base+"/submit", validForm)

			Convey("Then it is an invalid transition", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode(w)["code"], ShouldEqual, "invalid_transition")
			})
		})

		Convey("When started and submitted", func() {
			started := do(mux, http.MethodPost, base+"/start", "")
			So(started.Code, ShouldEqual, http.StatusOK)
			So(decode(started)["step"], ShouldEqual, "form")
			w := do(mux, http.MethodPost, base+"/submit", validForm)

			Convey("Then it is accepted and the result is reachable", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				body := decode(w)
				So(body["id"], ShouldEqual, sessionID)
				So(body["step"], ShouldEqual, "result")
				So(body["result"].(map[string]any)["wealthLuck"], ShouldEqual, 72.0)
				So(body["talisman"], ShouldEqual, "data:image/png;base64,QUJD")
				So(body["profile"].(map[string]any)["globalAnswers"].(map[string]any)["macroView"], ShouldEqual, "买买买")
			})

			Convey("And the share payload carries the public link", func() {
				w := do(mux, http.MethodGet, base+"/share", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["text"], ShouldContainSubstring, "72%")
				So(body["fallback"], ShouldEndWith, "点击测测：https://wangcai.example/")
			})

			Convey("And reset returns to welcome", func() {
				w := do(mux, http.MethodPost, base+"/reset", "")
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode(w)
				So(body["step"], ShouldEqual, "welcome")
				So(body, ShouldNotContainKey, "result")
				So(body, ShouldNotContainKey, "talisman")

				Convey("And a second reset from welcome still reports welcome", func() {
					again := do(mux, http.MethodPost, base+"/reset", "")
					So(again.Code, ShouldEqual, http.StatusOK)
					So(decode(again)["step"], ShouldEqual, "welcome")
				})
			})
		})

		Convey("When the generation fails", func() {
			deps.outcome = workflow.Failure(workflow.StageFortune,
				fortune.NewGenerationError(fortune.KindText, fortune.ErrMalformedResponse))
			do(mux, http.MethodPost, base+"/start", "")
			w := do(mux, http.MethodPost, base+"/submit", validForm)

			Convey("Then the form is shown with the fixed message only", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				body := decode(w)
				So(body["step"], ShouldEqual, "form")
				So(body["error"], ShouldEqual, workflow.FailureMessage)
				So(w.Body.String(), ShouldNotContainSubstring, "malformed")
			})
		})

		Convey("When the form body is broken", func() {
			do(mux, http.MethodPost, base+"/start", "")

			Convey("Then bad JSON is a bad request", func() {
				w := do(mux, http.MethodPost, base+"/submit", `{"zodiac":`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
			})

			Convey("And an unknown answer is a bad request", func() {
				w := do(mux, http.MethodPost, base+"/submit", strings.Replace(validForm, "买买买", "梭哈", 1))
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["message"], ShouldContainSubstring, "macroView")
			})
		})

		Convey("When sharing without a result", func() {
			w := do(mux, http.MethodGet, base+"/share", "")

			Convey("Then it is 409", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("When the session is unknown", func() {
			w := do(mux, http.MethodGet, "/api/sessions/7f0b3c5e-9d2a-4a51-9a0e-2b1f4c6d8e10", "")

			Convey("Then it is 404 not_found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decode(w)["code"], ShouldEqual, "not_found")
			})
		})

		Convey("When the backend breaks", func() {
			deps.failWith = errors.New("dial tcp 10.0.0.7:443: boom")
			w := do(mux, http.MethodPost, "/api/sessions", "")

			Convey("Then it is 500 internal", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode(w)["code"], ShouldEqual, "internal")
			})

			Convey("And the cause is not sent to the client", func() {
				So(decode(w)["message"], ShouldEqual, http.StatusText(http.StatusInternalServerError))
				So(w.Body.String(), ShouldNotContainSubstring, "10.0.0.7")
			})
		})
	})
}

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a handler wrapped in the metrics middleware", t, func() {
		var inner int
		h := api.MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(inner)
			_, _ = w.Write([]byte("x"))
		}, "test")

		Convey("Then the downstream status reaches the client unchanged", func() {
			for _, code := range []int{http.StatusOK, http.StatusConflict, http.StatusInternalServerError} {
				inner = code
				w := httptest.NewRecorder()
				h(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
				So(w.Code, ShouldEqual, code)
				So(w.Body.String(), ShouldEqual, "x")
			}
		})
	})
}
