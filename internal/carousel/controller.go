// Package carousel drives the new-releases hero carousel: which slide is shown,
// when it advances, and how refreshed content replaces the current set.
package carousel

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cinebrain/releases/internal/config"
	"github.com/cinebrain/releases/internal/metrics"
	"github.com/cinebrain/releases/internal/models"
	"github.com/cinebrain/releases/internal/ranking"
)

// State is the lifecycle state of a Controller
type State int

const (
	StateIdle State = iota
	StateLoaded
	StateFallback
	StatePlaying
	StatePaused
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StateFallback:
		return "fallback"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// HasContent reports whether the state shows real (non-placeholder) slides
func (s State) HasContent() bool {
	return s == StateLoaded || s == StatePlaying || s == StatePaused
}

// Key is a keyboard input the carousel responds to
type Key int

const (
	KeyLeft Key = iota + 1
	KeyRight
	KeySpace
)

// SwipeThreshold is the minimum horizontal travel, in pixels, that counts as a swipe
const SwipeThreshold = 50

const (
	DefaultInterval = 5 * time.Second
)

// Renderer displays slides. Its methods are called with the controller locked
// and must not call back into the Controller.
type Renderer interface {
	Render(item models.ContentItem, index, total int)
	RenderFallback(items []models.ContentItem)
}

// Options configures a Controller. Zero values take defaults.
type Options struct {
	Interval        time.Duration
	ChangeThreshold float64
	// Placeholder is the static content shown when nothing was ever loaded
	Placeholder []models.ContentItem
	// OnStateChange observes transitions; it runs with the controller locked
	OnStateChange func(State)
}

// Snapshot is a point-in-time view of a Controller
type Snapshot struct {
	State      State
	Index      int
	Total      int
	Items      []models.ContentItem
	Autoplay   bool
	Visible    bool
	TimerArmed bool
}

// Controller is the carousel state machine. All methods are safe for concurrent
// use and become no-ops once the controller is destroyed.
type Controller struct {
	mu       sync.Mutex
	renderer Renderer
	opts     Options

	state    State
	items    []models.ContentItem
	index    int
	autoplay bool
	visible  bool

	timer *time.Timer
	// generation invalidates timer callbacks that fired after being stopped
	generation uint64
}

// NewController creates an idle controller
func NewController(renderer Renderer, opts Options) *Controller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.ChangeThreshold <= 0 {
		opts.ChangeThreshold = ranking.DefaultChangeThreshold
	}
	return &Controller{
		renderer: renderer,
		opts:     opts,
		state:    StateIdle,
		visible:  true,
	}
}

// Initialize displays the first slide of items, or the placeholder content when
// items is empty. A controller already showing content is reset to slide 0.
func (c *Controller) Initialize(items []models.ContentItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDestroyed {
		return
	}
	c.load(items)
}

func (c *Controller) load(items []models.ContentItem) {
	logger := config.GetLogger()
	c.stopTimer()

	if len(items) == 0 {
		c.items = nil
		c.index = 0
		c.setState(StateFallback)
		logger.Warn().Int("placeholders", len(c.opts.Placeholder)).Msg("No new releases to show, displaying placeholder content")
		c.renderer.RenderFallback(c.opts.Placeholder)
		return
	}

	c.items = append([]models.ContentItem(nil), items...)
	c.index = 0
	c.setState(StateLoaded)
	c.render("reset")
	logger.Info().Int("slides", len(c.items)).Msg("Carousel loaded")

	if c.autoplay {
		c.play()
	}
}

// EnsureFallback shows the placeholder content if nothing was ever loaded
func (c *Controller) EnsureFallback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		c.load(nil)
	}
}

// StartAutoPlay advances one slide every interval while the carousel is visible.
// Called before content is loaded, playback begins once slides arrive.
func (c *Controller) StartAutoPlay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDestroyed {
		return
	}
	c.autoplay = true
	if c.state.HasContent() {
		c.play()
	}
}

// play moves to Playing and arms the timer, or to Paused while hidden
func (c *Controller) play() {
	if !c.visible {
		c.stopTimer()
		c.setState(StatePaused)
		return
	}
	c.setState(StatePlaying)
	c.armTimer()
}

// StopAutoPlay pauses the carousel on the current slide
func (c *Controller) StopAutoPlay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDestroyed {
		return
	}
	c.autoplay = false
	c.stopTimer()
	if c.state == StatePlaying {
		c.setState(StatePaused)
	}
}

// GoToSlide shows slide i, wrapping out-of-range indexes. A playing carousel
// keeps playing and restarts the autoplay timer so the new slide gets a full interval.
func (c *Controller) GoToSlide(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goTo(i)
}

// NextSlide shows the following slide, wrapping to the first
func (c *Controller) NextSlide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goTo(c.index + 1)
}

// PreviousSlide shows the preceding slide, wrapping to the last
func (c *Controller) PreviousSlide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.goTo(c.index - 1)
}

func (c *Controller) goTo(i int) {
	if !c.state.HasContent() {
		return
	}
	n := len(c.items)
	c.index = ((i % n) + n) % n
	c.render("manual")
	if c.state == StatePlaying {
		c.armTimer()
	}
}

// HandleKey maps arrow keys to navigation and space to play/pause.
// It reports whether the key was handled.
func (c *Controller) HandleKey(key Key) bool {
	switch key {
	case KeyLeft:
		c.PreviousSlide()
	case KeyRight:
		c.NextSlide()
	case KeySpace:
		c.mu.Lock()
		playing := c.state == StatePlaying
		c.mu.Unlock()
		if playing {
			c.StopAutoPlay()
		} else {
			c.StartAutoPlay()
		}
	default:
		return false
	}
	return true
}

// HandleSwipe navigates on a horizontal swipe of dx pixels: leftward shows the
// next slide, rightward the previous one. Short swipes are ignored.
func (c *Controller) HandleSwipe(dx float64) bool {
	if math.Abs(dx) < SwipeThreshold {
		return false
	}
	if dx < 0 {
		c.NextSlide()
	} else {
		c.PreviousSlide()
	}
	return true
}

// SetVisible pauses autoplay while the carousel is hidden and resumes it once
// it is shown again.
func (c *Controller) SetVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDestroyed || c.visible == visible {
		return
	}
	c.visible = visible

	switch {
	case !visible && c.state == StatePlaying:
		c.stopTimer()
		c.setState(StatePaused)
	case visible && c.autoplay && c.state == StatePaused:
		c.play()
	}
}

// ApplyRefresh replaces the current slides with items. When fewer than the
// change threshold of the current IDs survive, the carousel restarts at slide 0;
// otherwise the data is swapped silently and the current slide stays on screen.
// An empty refresh never clears loaded content. It reports whether the
// carousel was reset.
func (c *Controller) ApplyRefresh(items []models.ContentItem) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	logger := config.GetLogger()

	switch {
	case c.state == StateDestroyed:
		return false
	case len(items) == 0:
		logger.Warn().Str("state", c.state.String()).Msg("Refresh returned no content, keeping current slides")
		return false
	case !c.state.HasContent():
		c.load(items)
		metrics.CarouselContentSwapsTotal.WithLabelValues("true").Inc()
		return true
	}

	significant := ranking.HasSignificantChanges(c.items, items, c.opts.ChangeThreshold)
	metrics.CarouselContentSwapsTotal.WithLabelValues(strconv.FormatBool(significant)).Inc()

	if significant {
		logger.Info().
			Float64("overlap", ranking.Overlap(c.items, items)).
			Int("slides", len(items)).
			Msg("Significant content change, restarting carousel")
		c.items = append([]models.ContentItem(nil), items...)
		c.index = 0
		c.render("reset")
		if c.state == StatePlaying {
			c.armTimer()
		}
		return true
	}

	currentID := c.items[c.index].ID
	c.items = append([]models.ContentItem(nil), items...)
	c.index = min(c.index, len(c.items)-1)
	for i, item := range c.items {
		if item.ID == currentID {
			c.index = i
			break
		}
	}
	if c.state == StatePlaying && (c.timer == nil || len(c.items) <= 1) {
		c.armTimer()
	}
	logger.Debug().Int("slides", len(c.items)).Int("index", c.index).Msg("Content refreshed silently")
	return false
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the controller's current view
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:      c.state,
		Index:      c.index,
		Total:      len(c.items),
		Items:      append([]models.ContentItem(nil), c.items...),
		Autoplay:   c.autoplay,
		Visible:    c.visible,
		TimerArmed: c.timer != nil,
	}
}

// Destroy stops every timer and releases the slides. Calling it again is a no-op.
func (c *Controller) Destroy() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateDestroyed {
		return
	}
	c.stopTimer()
	c.items = nil
	c.index = 0
	c.autoplay = false
	c.setState(StateDestroyed)
	logger := config.GetLogger()
	logger.Debug().Msg("Carousel destroyed")
}

func (c *Controller) render(reason string) {
	c.renderer.Render(c.items[c.index], c.index, len(c.items))
	metrics.CarouselSlideChangesTotal.WithLabelValues(reason).Inc()
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(s)
	}
}

// armTimer (re)starts the single-shot autoplay timer. A single slide never advances.
func (c *Controller) armTimer() {
	c.stopTimer()
	if len(c.items) <= 1 {
		return
	}
	c.generation++
	gen := c.generation
	c.timer = time.AfterFunc(c.opts.Interval, func() { c.tick(gen) })
}

func (c *Controller) stopTimer() {
	c.generation++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) tick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.state != StatePlaying {
		return
	}
	c.timer = nil
	c.index = (c.index + 1) % len(c.items)
	c.render("autoplay")
	c.armTimer()
}
