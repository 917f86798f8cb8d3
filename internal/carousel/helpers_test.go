package carousel

import (
	"sync"
	"testing"
	"time"

	"github.com/cinebrain/releases/internal/models"
)

type rendered struct {
	id    int
	index int
	total int
}

// recordingRenderer records every call and forwards slide renders on a channel
type recordingRenderer struct {
	mu        sync.Mutex
	slides    []rendered
	fallbacks int
	ch        chan rendered
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{ch: make(chan rendered, 64)}
}

func (r *recordingRenderer) Render(item models.ContentItem, index, total int) {
	r.mu.Lock()
	r.slides = append(r.slides, rendered{id: item.ID, index: index, total: total})
	r.mu.Unlock()
	select {
	case r.ch <- rendered{id: item.ID, index: index, total: total}:
	default:
	}
}

func (r *recordingRenderer) RenderFallback([]models.ContentItem) {
	r.mu.Lock()
	r.fallbacks++
	r.mu.Unlock()
}

func (r *recordingRenderer) Renders() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slides)
}

func (r *recordingRenderer) Last() rendered {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.slides) == 0 {
		return rendered{index: -1}
	}
	return r.slides[len(r.slides)-1]
}

func (r *recordingRenderer) Fallbacks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fallbacks
}

// waitForIndex waits for a render of index, draining other renders
func (r *recordingRenderer) waitForIndex(t *testing.T, index int, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case got := <-r.ch:
			if got.index == index {
				return
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for slide %d, last render %+v", index, r.Last())
		}
	}
}

func drain(ch chan rendered) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

func slides(ids ...int) []models.ContentItem {
	items := make([]models.ContentItem, len(ids))
	for i, id := range ids {
		items[i] = models.ContentItem{ID: id, Title: "Slide", PosterPath: "/p.jpg"}
	}
	return items
}

func slideIDs(items []models.ContentItem) []int {
	ids := make([]int, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func newTestController(t *testing.T, interval time.Duration) (*Controller, *recordingRenderer) {
	t.Helper()
	r := newRecordingRenderer()
	c := NewController(r, Options{Interval: interval, Placeholder: slides(900, 901)})
	t.Cleanup(c.Destroy)
	return c, r
}
