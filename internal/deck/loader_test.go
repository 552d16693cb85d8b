package deck

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spigell/matchdeck/internal/careerapi"
)

type blockingFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	release map[string]chan struct{}
	started chan string
}

func newBlockingFetcher(users ...string) *blockingFetcher {
	f := &blockingFetcher{
		calls:   make(map[string]int),
		release: make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
	for _, u := range users {
		f.release[u] = make(chan struct{})
	}
	return f
}

func (f *blockingFetcher) GetMatches(ctx context.Context, userID string) (*careerapi.Feed, error) {
	f.mu.Lock()
	f.calls[userID]++
	release := f.release[userID]
	f.mu.Unlock()

	f.started <- userID

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-release:
	}

	return &careerapi.Feed{
		Matches:       &careerapi.Matches{Items: []*careerapi.Match{{ID: userID + "-1"}}},
		HasAssessment: true,
	}, nil
}

func (f *blockingFetcher) callsFor(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[userID]
}

func waitStarted(t *testing.T, f *blockingFetcher, userID string) {
	t.Helper()

	select {
	case got := <-f.started:
		if got != userID {
			t.Fatalf("expected fetch for %q, got %q", userID, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch for %q did not start", userID)
	}
}

type loadResult struct {
	feed *careerapi.Feed
	err  error
}

func loadAsync(l *Loader, userID string) <-chan loadResult {
	ch := make(chan loadResult, 1)
	go func() {
		feed, err := l.Load(context.Background(), userID)
		ch <- loadResult{feed: feed, err: err}
	}()
	return ch
}

func TestLoaderDiscardsLoadForPreviousUser(t *testing.T) {
	t.Parallel()

	f := newBlockingFetcher("alice", "bob")
	l := NewLoader(context.Background(), f, nil)

	first := loadAsync(l, "alice")
	waitStarted(t, f, "alice")

	second := loadAsync(l, "bob")
	waitStarted(t, f, "bob")
	close(f.release["bob"])

	res := <-second
	if res.err != nil {
		t.Fatalf("unexpected error: %v", res.err)
	}
	if res.feed.Matches.Items[0].ID != "bob-1" {
		t.Fatalf("unexpected feed: %+v", res.feed.Matches.Items[0])
	}

	res = <-first
	if !errors.Is(res.err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded for the cancelled load, got %v", res.err)
	}
}

func TestLoaderSharesRequestForSameUser(t *testing.T) {
	t.Parallel()

	f := newBlockingFetcher("alice")
	l := NewLoader(context.Background(), f, nil)

	first := loadAsync(l, "alice")
	waitStarted(t, f, "alice")

	var joined atomic.Bool
	second := make(chan loadResult, 1)
	go func() {
		joined.Store(true)
		feed, err := l.Load(context.Background(), "alice")
		second <- loadResult{feed: feed, err: err}
	}()

	for !joined.Load() {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(f.release["alice"])

	for _, ch := range []<-chan loadResult{first, second} {
		res := <-ch
		if res.err != nil {
			t.Fatalf("unexpected error: %v", res.err)
		}
		if res.feed.Matches.Items[0].ID != "alice-1" {
			t.Fatalf("unexpected feed: %+v", res.feed.Matches.Items[0])
		}
	}

	if got := f.callsFor("alice"); got != 1 {
		t.Fatalf("expected one shared request, got %d", got)
	}
}

func TestLoaderStop(t *testing.T) {
	t.Parallel()

	f := newBlockingFetcher("alice")
	l := NewLoader(context.Background(), f, nil)

	first := loadAsync(l, "alice")
	waitStarted(t, f, "alice")
	l.Stop()

	if res := <-first; !errors.Is(res.err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded after Stop, got %v", res.err)
	}

	close(f.release["alice"])
	feed, err := l.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("load after Stop failed: %v", err)
	}
	if feed.Matches.Len() != 1 {
		t.Fatalf("unexpected feed: %+v", feed)
	}
	if got := f.callsFor("alice"); got != 2 {
		t.Fatalf("expected a fresh request after Stop, got %d calls", got)
	}
}

func TestLoaderCallerContext(t *testing.T) {
	t.Parallel()

	f := newBlockingFetcher("alice")
	l := NewLoader(context.Background(), f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, "alice")
		done <- err
	}()

	waitStarted(t, f, "alice")
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	l.Stop()
}

func TestLoaderPassesFetchErrors(t *testing.T) {
	t.Parallel()

	l := NewLoader(context.Background(), fetcherFunc(func(context.Context, string) (*careerapi.Feed, error) {
		return nil, careerapi.ErrNoAssessment
	}), nil)

	if _, err := l.Load(context.Background(), "alice"); !errors.Is(err, careerapi.ErrNoAssessment) {
		t.Fatalf("expected ErrNoAssessment, got %v", err)
	}
}

type fetcherFunc func(ctx context.Context, userID string) (*careerapi.Feed, error)

func (f fetcherFunc) GetMatches(ctx context.Context, userID string) (*careerapi.Feed, error) {
	return f(ctx, userID)
}
