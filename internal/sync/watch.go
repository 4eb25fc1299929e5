package sync

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/systemshift/leaky/internal/mount"
)

// Watcher re-stages and pushes WorkDir on a debounce after filesystem
// activity settles, for `leaky watch`. Its lifecycle mirrors a background
// poller: Start launches a goroutine, Stop signals it to exit and waits for
// it to actually have done so.
type Watcher struct {
	session  *Session
	mount    *mount.Mount
	ignore   []string
	debounce time.Duration
	log      *zap.Logger

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher builds a watcher over session.WorkDir. m is the mount staged
// changes are applied to and pushed from; the caller owns opening it (and,
// after Stop, closing or re-reading it).
func NewWatcher(session *Session, m *mount.Mount, ignore []string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(session.WorkDir); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		session:  session,
		mount:    m,
		ignore:   ignore,
		debounce: debounce,
		log:      log,
		watcher:  fw,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start launches the background loop: it coalesces bursts of fsnotify
// events behind a debounce timer, then stages and pushes exactly once per
// settled burst.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer close(w.doneCh)
		var timer *time.Timer
		var timerC <-chan time.Time

		for {
			select {
			case <-w.stopCh:
				if timer != nil {
					timer.Stop()
				}
				return
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				w.log.Warn("watch error", zap.Error(err))
			case _, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			case <-timerC:
				timerC = nil
				if err := w.flush(ctx); err != nil {
					w.log.Error("watch flush failed", zap.Error(err))
				}
			}
		}
	}()
}

func (w *Watcher) flush(ctx context.Context) error {
	res, err := w.session.Stage(ctx, w.mount, w.ignore)
	if err != nil {
		return err
	}
	if len(res.Ops) == 0 {
		return nil
	}
	head, err := w.session.Push(ctx, w.mount)
	if err != nil {
		return err
	}
	w.log.Info("pushed", zap.Int("ops", len(res.Ops)), zap.Stringer("head", head))
	return nil
}

// Stop signals the watch loop to exit and waits for it to finish.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}
