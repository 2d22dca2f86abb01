package core

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"
)

var errBackend = errors.New("backend unavailable")

// gate lets a test hold a gateway call open until it decides the order of completions
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

type fakeGateway struct {
	mu       sync.Mutex
	gates    map[string]*gate
	list     map[int][]MessageSummary
	details  map[string]*MessageDetail
	analyses map[string]*AnalysisResult
	fail     map[string]error

	listCalls    int
	detailCalls  int
	analyzeCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		gates:    make(map[string]*gate),
		list:     make(map[int][]MessageSummary),
		details:  make(map[string]*MessageDetail),
		analyses: make(map[string]*AnalysisResult),
		fail:     make(map[string]error),
	}
}

// hold makes the next call for key block until its gate is released
func (f *fakeGateway) hold(key string) *gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := newGate()
	f.gates[key] = g
	return g
}

func (f *fakeGateway) wait(ctx context.Context, key string) error {
	f.mu.Lock()
	g := f.gates[key]
	delete(f.gates, key)
	f.mu.Unlock()
	if g == nil {
		return nil
	}
	close(g.started)
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeGateway) failing(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail[key]
}

func (f *fakeGateway) ListMessages(ctx context.Context, maxResults int) ([]MessageSummary, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	f.mu.Unlock()

	key := listKey(call)
	if err := f.wait(ctx, key); err != nil {
		return nil, err
	}
	if err := f.failing(key); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.list[call]
	if len(list) > maxResults {
		list = list[:maxResults]
	}
	return list, nil
}

func (f *fakeGateway) GetMessage(ctx context.Context, id string) (*MessageDetail, error) {
	f.mu.Lock()
	f.detailCalls++
	f.mu.Unlock()

	if err := f.wait(ctx, "detail:"+id); err != nil {
		return nil, err
	}
	if err := f.failing("detail:" + id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.details[id]
	if !ok {
		return nil, errBackend
	}
	return d, nil
}

func (f *fakeGateway) AnalyzeText(ctx context.Context, text string) (*AnalysisResult, error) {
	f.mu.Lock()
	f.analyzeCalls++
	f.mu.Unlock()

	if err := f.wait(ctx, "text:"+text); err != nil {
		return nil, err
	}
	if err := f.failing("text:" + text); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.analyses[text]
	if !ok {
		return nil, errBackend
	}
	return r, nil
}

func (f *fakeGateway) AuthURL(ctx context.Context) (string, error) {
	return "https://accounts.example.com/auth", nil
}

func (f *fakeGateway) calls() (list, detail, analyze int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.detailCalls, f.analyzeCalls
}

func listKey(call int) string {
	return "list:" + strconv.Itoa(call)
}

// recordingNotifier collects failure signals
type recordingNotifier struct {
	mu  sync.Mutex
	ops []Operation
}

func (n *recordingNotifier) NotifyFailure(op Operation, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ops = append(n.ops, op)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.ops)
}

var loggedIn = AuthorizerFunc(func() bool { return true })

// async runs fn in a goroutine and returns a channel carrying its error
func async(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- fn() }()
	return ch
}

func waitStarted(t *testing.T, g *gate) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("gateway call was never issued")
	}
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("call did not complete")
		return nil
	}
}

func summary(id string, c Category, risk float64, urls int) MessageSummary {
	return MessageSummary{
		ID:      id,
		Subject: "subject " + id,
		From:    id + "@example.com",
		Analysis: AnalysisResult{
			Category:  c,
			RiskScore: risk,
			URLCount:  urls,
		},
	}
}
