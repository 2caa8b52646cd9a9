package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hmercer/tapread/internal/cache"
	"github.com/hmercer/tapread/internal/lookup"
	"github.com/hmercer/tapread/internal/model"
	"github.com/hmercer/tapread/internal/resolver"
	"github.com/hmercer/tapread/internal/segment"
)

// Coordinator drives the interaction state machine for one reading session.
// Every user gesture bumps a generation counter and cancels the previous
// in-flight lookup; a lookup result is applied only if its generation still
// matches, so a stale lookup can never overwrite a newer gesture's state.
type Coordinator struct {
	id       string
	doc      *model.StructuredText
	cache    *cache.Cache
	provider lookup.Provider
	stats    *lookup.Stats
	log      *slog.Logger
	viewport Size
	tooltip  Size

	baseCtx context.Context
	close   context.CancelFunc

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
}

// Config carries the coordinator's collaborators and geometry.
type Config struct {
	ID       string
	Document *model.StructuredText
	Cache    *cache.Cache
	Provider lookup.Provider
	Stats    *lookup.Stats
	Logger   *slog.Logger
	Viewport Size
	Tooltip  Size
}

// DefaultTooltipSize is used when the client does not report one.
var DefaultTooltipSize = Size{Width: 260, Height: 120}

// NewCoordinator builds an idle coordinator for one document.
func NewCoordinator(cfg Config) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tooltip.Width <= 0 || cfg.Tooltip.Height <= 0 {
		cfg.Tooltip = DefaultTooltipSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		id:       cfg.ID,
		doc:      cfg.Document,
		cache:    cfg.Cache,
		provider: cfg.Provider,
		stats:    cfg.Stats,
		log:      cfg.Logger.With("session", cfg.ID),
		viewport: cfg.Viewport,
		tooltip:  cfg.Tooltip,
		baseCtx:  ctx,
		close:    cancel,
		state:    State{Phase: PhaseIdle},
	}
}

// ID returns the session identifier.
func (c *Coordinator) ID() string { return c.id }

// State returns the current state snapshot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Tap handles a tap at point p inside the element with the given ID. Points
// share the page coordinate space with element bounds. Taps that resolve to
// no valid word leave the current state untouched.
func (c *Coordinator) Tap(elementID string, p model.Point) (State, error) {
	el, ok := c.doc.ElementByID(elementID)
	if !ok {
		return c.State(), fmt.Errorf("unknown element %q", elementID)
	}
	word, ok := resolver.ResolveWord(el, p)
	if !ok || !resolver.IsLookupCandidate(word, el.Kind) {
		return c.State(), nil
	}
	anchor := PlaceTooltip(p, c.viewport, c.tooltip)

	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.bumpLocked()

	if c.cache != nil {
		if cached, hit := c.cache.Get(word); hit {
			c.state = State{Phase: PhaseShowingTooltip, Word: word, Result: cached, Tooltip: anchor}
			return c.state, nil
		}
	}

	c.state = State{Phase: PhaseResolving, Word: word, Tooltip: anchor}
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancel = cancel
	go c.lookupWord(ctx, gen, word, anchor)
	return c.state, nil
}

// Press handles a long-press on an element. When wordIndex is non-negative
// the sentence containing that word is translated; otherwise the element's
// whole text is. The result is shown in the detail phase directly.
func (c *Coordinator) Press(elementID string, wordIndex int) (State, error) {
	el, ok := c.doc.ElementByID(elementID)
	if !ok {
		return c.State(), fmt.Errorf("unknown element %q", elementID)
	}
	text := el.Content
	if wordIndex >= 0 {
		if s := segment.SentenceAt(el.Content, wordIndex); s != "" {
			text = s
		}
	}
	if !resolver.IsSentenceWorthTranslating(text, el.Kind) {
		return c.State(), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.bumpLocked()

	if c.cache != nil {
		if cached, hit := c.cache.Get(text); hit {
			c.state = State{Phase: PhaseShowingDetail, Word: text, Result: cached}
			return c.state, nil
		}
	}

	c.state = State{Phase: PhaseResolving, Word: text}
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancel = cancel
	go c.translateText(ctx, gen, text)
	return c.state, nil
}

// Detail promotes a showing tooltip to the detail view. Any other phase is
// left as is.
func (c *Coordinator) Detail() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Phase == PhaseShowingTooltip {
		next := c.state
		next.Phase = PhaseShowingDetail
		c.state = next
	}
	return c.state
}

// Dismiss cancels any in-flight lookup and returns the machine to idle.
func (c *Coordinator) Dismiss() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bumpLocked()
	c.state = State{Phase: PhaseIdle}
	return c.state
}

// Close tears the session down, cancelling all outstanding work.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.bumpLocked()
	c.state = State{Phase: PhaseCancelled}
	c.mu.Unlock()
	c.close()
}

// bumpLocked advances the generation and cancels the prior lookup.
// Callers must hold c.mu.
func (c *Coordinator) bumpLocked() uint64 {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return c.generation
}

func (c *Coordinator) lookupWord(ctx context.Context, gen uint64, word string, anchor model.Point) {
	start := time.Now()
	res, err := c.defineWithRetry(ctx, word)
	if c.stats != nil && err == nil {
		c.stats.Record(time.Since(start).Milliseconds())
	}
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if err != nil {
		c.log.Warn("lookup failed", "word", word, "error", err)
		c.state = State{Phase: PhaseShowingTooltip, Word: word, Result: lookup.NotFound(word), Err: err.Error(), Tooltip: anchor}
		return
	}
	if c.cache != nil && res.Found {
		c.cache.Put(word, res, res.EstimateSize())
	}
	c.state = State{Phase: PhaseShowingTooltip, Word: word, Result: res, Tooltip: anchor}
}

func (c *Coordinator) translateText(ctx context.Context, gen uint64, text string) {
	start := time.Now()
	res, err := c.provider.Translate(ctx, text)
	if c.stats != nil && err == nil {
		c.stats.Record(time.Since(start).Milliseconds())
	}
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if err != nil {
		c.log.Warn("translation failed", "error", err)
		c.state = State{Phase: PhaseShowingDetail, Word: text, Result: lookup.NotFound(text), Err: err.Error()}
		return
	}
	if c.cache != nil && res.Found {
		c.cache.Put(text, res, res.EstimateSize())
	}
	c.state = State{Phase: PhaseShowingDetail, Word: text, Result: res}
}

func (c *Coordinator) defineWithRetry(ctx context.Context, word string) (*lookup.Result, error) {
	var lastErr error
	for attempt := 0; attempt <= lookup.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(lookup.Backoff(attempt - 1)):
			}
		}
		res, err := c.provider.Define(ctx, word)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !lookup.IsRetryable(err) {
			return nil, err
		}
		c.log.Debug("retrying lookup", "word", word, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}
