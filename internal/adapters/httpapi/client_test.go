package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mikey/phish-triage/internal/core"
	"go.uber.org/zap/zaptest"
	"golang.org/x/oauth2"
)

const testToken = "header.payload.sig"

func newTestClient(t *testing.T, h http.Handler, tokens oauth2.TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	if tokens == nil {
		tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: testToken, TokenType: "Bearer"})
	}
	c, err := NewClient(srv.URL, tokens, 5*time.Second, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	if got := r.Header.Get("Authorization"); got != "Bearer "+testToken {
		t.Errorf("Authorization = %q", got)
	}
	if r.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestClient_ListMessages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/emails", func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		if got := r.URL.Query().Get("max_results"); got != "20" {
			t.Errorf("max_results = %q, want 20", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"emails":[
			{"id":"m1","thread_id":"t1","subject":"Hi","from":"a@example.com","date":"Mon","snippet":"s",
			 "analysis":{"category":"Safe","risk_score":3,"ml_probability":12.5,"url_count":0,"word_count":10,
			 "suspicious_keyword_count":0,"urgency_level":"Normal","confidence":96.4}},
			{"id":"m2","subject":"Verify","analysis":{"category":"Fraudulent","risk_score":80,"url_count":2,"urgency_level":"High"}}
		],"count":2}`))
	})
	c := newTestClient(t, mux, nil)

	list, err := c.ListMessages(context.Background(), 20)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].ID != "m1" || list[0].ThreadID != "t1" || list[0].Analysis.Confidence != 96.4 {
		t.Errorf("list[0] = %+v", list[0])
	}
	if list[1].Analysis.Category != core.CategoryFraudulent || list[1].Analysis.UrgencyLevel.String() != "High" {
		t.Errorf("list[1] = %+v", list[1])
	}
}

func TestClient_ListMessagesNullEmails(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"emails":null,"count":0}`))
	}), nil)

	list, err := c.ListMessages(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("ListMessages() = %#v, want empty slice", list)
	}
}

func TestClient_GetMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		if r.URL.EscapedPath() != "/api/emails/abc%2F1" {
			t.Errorf("path = %q", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"email":{"id":"abc/1","subject":"S","from":"f","to":"me","date":"d","body":"Hello"},
			"analysis":{"category":"Suspicious","risk_score":40}}`))
	}), nil)

	d, err := c.GetMessage(context.Background(), "abc/1")
	if err != nil {
		t.Fatalf("GetMessage() error = %v", err)
	}
	if d.Email.Body != "Hello" || d.Email.To != "me" || d.Analysis.Category != core.CategorySuspicious {
		t.Errorf("GetMessage() = %+v", d)
	}
}

func TestClient_AnalyzeText(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		if r.Method != http.MethodPost || r.URL.Path != "/api/analyze" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Text != "  Urgent: verify your account now " {
			t.Errorf("text = %q, want the raw input", req.Text)
		}
		w.Write([]byte(`{"analysis":{"category":"Suspicious","risk_score":62,"ml_probability":77,"url_count":1}}`))
	}), nil)

	r, err := c.AnalyzeText(context.Background(), "  Urgent: verify your account now ")
	if err != nil {
		t.Fatalf("AnalyzeText() error = %v", err)
	}
	if r.Category != core.CategorySuspicious || r.RiskScore != 62 || r.MLProbability != 77 || r.URLCount != 1 {
		t.Errorf("AnalyzeText() = %+v", r)
	}
}

func TestClient_FailuresAreRequestFailed(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server error with detail",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"detail":"Gmail not connected for this user"}`))
			},
			want: "Gmail not connected",
		},
		{
			name: "unauthorized",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
			want: "status 401",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"emails": [`))
			},
			want: "malformed response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler, nil)
			_, err := c.ListMessages(context.Background(), 10)
			if !errors.Is(err, core.ErrRequestFailed) {
				t.Fatalf("error = %v, want ErrRequestFailed", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestClient_MissingAnalysisIsFailure(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}), nil)
	if _, err := c.AnalyzeText(context.Background(), "x"); !errors.Is(err, core.ErrRequestFailed) {
		t.Errorf("AnalyzeText() error = %v, want ErrRequestFailed", err)
	}
}

type failingTokens struct{}

func (failingTokens) Token() (*oauth2.Token, error) { return nil, errors.New("signed out") }

func TestClient_TokenErrorIsRequestFailed(t *testing.T) {
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), failingTokens{})

	if _, err := c.GetMessage(context.Background(), "m1"); !errors.Is(err, core.ErrRequestFailed) {
		t.Errorf("GetMessage() error = %v, want ErrRequestFailed", err)
	}
	if called {
		t.Error("request reached the server without a token")
	}
}

func TestClient_AuthURLAndHealthWithoutToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/google/login", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("login endpoint should not receive a token")
		}
		w.Write([]byte(`{"url":"https://accounts.google.com/o/oauth2/v2/auth?client_id=x"}`))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"healthy"}`))
	})
	c := newTestClient(t, mux, failingTokens{})

	u, err := c.AuthURL(context.Background())
	if err != nil || !strings.HasPrefix(u, "https://accounts.google.com/") {
		t.Errorf("AuthURL() = %q, %v", u, err)
	}
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8000", "ftp://example.com"} {
		if _, err := NewClient(u, failingTokens{}, time.Second, zaptest.NewLogger(t)); err == nil {
			t.Errorf("NewClient(%q) succeeded, want error", u)
		}
	}
}
