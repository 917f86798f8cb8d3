package carousel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cinebrain/releases/internal/client"
	"github.com/cinebrain/releases/internal/models"
	"github.com/cinebrain/releases/internal/services"
)

type runCall struct {
	trigger services.Trigger
}

// fakePipeline returns queued results in order, repeating the last one
type fakePipeline struct {
	mu          sync.Mutex
	results     []fakeRun
	calls       []runCall
	invalidated int
	ran         chan struct{}
}

type fakeRun struct {
	items []models.ContentItem
	err   error
}

func newFakePipeline(runs ...fakeRun) *fakePipeline {
	return &fakePipeline{results: runs, ran: make(chan struct{}, 16)}
}

func (p *fakePipeline) Run(_ context.Context, trigger services.Trigger) (*services.PipelineResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, runCall{trigger: trigger})
	next := p.results[0]
	if len(p.results) > 1 {
		p.results = p.results[1:]
	}
	p.mu.Unlock()

	select {
	case p.ran <- struct{}{}:
	default:
	}
	if next.err != nil {
		return nil, next.err
	}
	return &services.PipelineResult{Items: next.items, Failed: []string{}}, nil
}

func (p *fakePipeline) Invalidate() {
	p.mu.Lock()
	p.invalidated++
	p.mu.Unlock()
}

func (p *fakePipeline) Calls() []runCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]runCall(nil), p.calls...)
}

func (p *fakePipeline) Invalidated() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.invalidated
}

func TestRefresher_LoadSuccess(t *testing.T) {
	c, r := newTestController(t, time.Hour)
	p := newFakePipeline(fakeRun{items: slides(1, 2, 3)})
	refresher := NewRefresher(p, c, RefresherOptions{})

	if err := refresher.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.State() != StateLoaded {
		t.Errorf("Expected loaded, got %v", c.State())
	}
	if got := r.Last(); got.id != 1 {
		t.Errorf("Expected first slide, got %+v", got)
	}
	if calls := p.Calls(); len(calls) != 1 || calls[0].trigger != services.TriggerInitial {
		t.Errorf("Expected one initial run, got %v", calls)
	}
}

func TestRefresher_LoadFailureFallsBack(t *testing.T) {
	c, r := newTestController(t, time.Hour)
	p := newFakePipeline(fakeRun{err: services.ErrAllCategoriesFailed})
	refresher := NewRefresher(p, c, RefresherOptions{})

	err := refresher.Load(context.Background())
	if !errors.Is(err, services.ErrAllCategoriesFailed) {
		t.Fatalf("Expected ErrAllCategoriesFailed, got %v", err)
	}
	if c.State() != StateFallback || r.Fallbacks() != 1 {
		t.Errorf("Expected fallback, got %v with %d fallbacks", c.State(), r.Fallbacks())
	}
}

func TestRefresher_LoadEmptyFallsBack(t *testing.T) {
	c, _ := newTestController(t, time.Hour)
	refresher := NewRefresher(newFakePipeline(fakeRun{items: nil}), c, RefresherOptions{})

	if err := refresher.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.State() != StateFallback {
		t.Errorf("Expected fallback, got %v", c.State())
	}
}

func TestRefresher_FailureKeepsLastGoodContent(t *testing.T) {
	c, r := newTestController(t, time.Hour)
	p := newFakePipeline(
		fakeRun{items: slides(1, 2, 3)},
		fakeRun{err: fmt.Errorf("run: %w", services.ErrAllCategoriesFailed)},
	)
	refresher := NewRefresher(p, c, RefresherOptions{})

	if err := refresher.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c.GoToSlide(2)

	if err := refresher.RefreshNow(context.Background(), false); err == nil {
		t.Fatal("Expected refresh error")
	}
	snap := c.Snapshot()
	if snap.State != StateLoaded || snap.Total != 3 || snap.Index != 2 {
		t.Errorf("Expected untouched content, got %+v", snap)
	}
	if r.Fallbacks() != 0 {
		t.Error("Expected no fallback after a prior successful load")
	}
}

func TestRefresher_SupersededRunIsIgnored(t *testing.T) {
	c, _ := newTestController(t, time.Hour)
	p := newFakePipeline(
		fakeRun{items: slides(1, 2)},
		fakeRun{err: fmt.Errorf("run: %w", client.ErrSuperseded)},
	)
	refresher := NewRefresher(p, c, RefresherOptions{})
	_ = refresher.Load(context.Background())

	if err := refresher.RefreshNow(context.Background(), false); err != nil {
		t.Errorf("Expected superseded run to be ignored, got %v", err)
	}
	if c.Snapshot().Total != 2 {
		t.Error("Expected content kept")
	}
}

func TestRefresher_HardRefreshInvalidates(t *testing.T) {
	c, _ := newTestController(t, time.Hour)
	p := newFakePipeline(fakeRun{items: slides(1, 2)}, fakeRun{items: slides(7, 8)})
	refresher := NewRefresher(p, c, RefresherOptions{})
	_ = refresher.Load(context.Background())

	if err := refresher.RefreshNow(context.Background(), true); err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}
	if p.Invalidated() != 1 {
		t.Errorf("Expected 1 invalidation, got %d", p.Invalidated())
	}
	calls := p.Calls()
	if calls[len(calls)-1].trigger != services.TriggerHard {
		t.Errorf("Expected hard trigger, got %v", calls[len(calls)-1].trigger)
	}
	if got := slideIDs(c.Snapshot().Items); got[0] != 7 {
		t.Errorf("Expected refreshed slides, got %v", got)
	}
}

func TestRefresher_SoftRefreshDoesNotInvalidate(t *testing.T) {
	c, _ := newTestController(t, time.Hour)
	p := newFakePipeline(fakeRun{items: slides(1, 2)})
	refresher := NewRefresher(p, c, RefresherOptions{})

	if err := refresher.RefreshNow(context.Background(), false); err != nil {
		t.Fatalf("RefreshNow: %v", err)
	}
	if p.Invalidated() != 0 {
		t.Errorf("Expected no invalidation, got %d", p.Invalidated())
	}
}

func TestRefresher_ScheduledRuns(t *testing.T) {
	c, _ := newTestController(t, time.Hour)
	p := newFakePipeline(fakeRun{items: slides(1, 2)})
	refresher := NewRefresher(p, c, RefresherOptions{SoftInterval: time.Second, HardInterval: time.Hour})

	if err := refresher.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Starting twice is harmless.
	if err := refresher.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	defer refresher.Stop()

	select {
	case <-p.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for a scheduled refresh")
	}
	if calls := p.Calls(); calls[0].trigger != services.TriggerSoft {
		t.Errorf("Expected soft trigger, got %v", calls[0].trigger)
	}
	deadline := time.Now().Add(time.Second)
	for c.State() != StateLoaded {
		if time.Now().After(deadline) {
			t.Fatalf("Expected scheduled refresh to load the carousel, got %v", c.State())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRefresher_StopIsIdempotent(t *testing.T) {
	c, _ := newTestController(t, time.Hour)
	refresher := NewRefresher(newFakePipeline(fakeRun{items: slides(1)}), c, RefresherOptions{})

	refresher.Stop()
	if err := refresher.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	refresher.Stop()
	refresher.Stop()
}

func TestEvery(t *testing.T) {
	if got := every(30 * time.Minute); got != "@every 30m0s" {
		t.Errorf("Expected @every 30m0s, got %q", got)
	}
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSweeper) ClearExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return 1
}

func (s *countingSweeper) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestRefresher_SoftScheduleSweepsCache(t *testing.T) {
	c, _ := newTestController(t, time.Hour)
	sweeper := &countingSweeper{}
	refresher := NewRefresher(newFakePipeline(fakeRun{items: slides(1)}), c, RefresherOptions{
		SoftInterval: time.Second,
		HardInterval: time.Hour,
		Sweeper:      sweeper,
	})
	if err := refresher.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer refresher.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for sweeper.Calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for a cache sweep")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
