package sync

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/grievease/petition-client-go/internal/model"
)

const feedBuffer = 100

// Fetcher performs the authoritative REST read used to seed the view
// and to answer re-fetch signals.
type Fetcher func(ctx context.Context) ([]model.Petition, error)

// Watcher keeps one local petition view consistent with the server. It
// seeds from a REST fetch, fans every configured push feed into the
// reconciler, and falls back to a fresh fetch when a message asks for
// one. Feeds are best-effort; the seeded view survives any of them
// failing.
type Watcher struct {
	fetch   Fetcher
	mode    Mode
	sources []UpdateSource

	mu        sync.Mutex
	view      []model.Petition
	listeners []func([]model.Petition)

	cancel   context.CancelFunc
	messages chan json.RawMessage
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewWatcher(fetch Fetcher, mode Mode, sources ...UpdateSource) *Watcher {
	return &Watcher{
		fetch:    fetch,
		mode:     mode,
		sources:  sources,
		messages: make(chan json.RawMessage, feedBuffer),
	}
}

// Start seeds the view and begins consuming the push feeds. A seed
// failure is fatal; a feed failure is logged and ignored.
func (w *Watcher) Start(ctx context.Context) error {
	seeded, err := w.fetch(ctx)
	if err != nil {
		return err
	}
	w.setView(seeded)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	for _, source := range w.sources {
		w.wg.Add(1)
		go func(source UpdateSource) {
			defer w.wg.Done()
			if err := source.Run(runCtx, w.messages); err != nil {
				log.Warn().Err(err).Str("feed", source.Name()).Msg("push feed unavailable")
			}
		}(source)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.consume(runCtx)
	}()

	return nil
}

// View returns a copy of the current petition view.
func (w *Watcher) View() []model.Petition {
	w.mu.Lock()
	defer w.mu.Unlock()
	view := make([]model.Petition, len(w.view))
	copy(view, w.view)
	return view
}

// Subscribe registers fn to run after every view change.
func (w *Watcher) Subscribe(fn func([]model.Petition)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Stop tears down the feeds and waits for them to drain. Safe to call
// more than once and before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		w.wg.Wait()
		close(w.messages)
	})
}

func (w *Watcher) consume(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-w.messages:
			w.apply(ctx, raw)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, raw json.RawMessage) {
	w.mu.Lock()
	next, action, err := Apply(w.view, raw, w.mode)
	w.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Msg("dropping malformed push message")
		return
	}

	if action == ActionRefetch {
		fetched, err := w.fetch(ctx)
		if err != nil {
			// Keep whatever we have; the next message or fetch will
			// catch us up.
			log.Warn().Err(err).Msg("re-fetch after push signal failed")
			return
		}
		next = fetched
	}

	w.setView(next)
}

func (w *Watcher) setView(view []model.Petition) {
	w.mu.Lock()
	w.view = view
	listeners := w.listeners
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
}
