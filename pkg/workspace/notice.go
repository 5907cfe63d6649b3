package workspace

import (
	"context"
	"time"

	"github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/observability"
)

// DefaultSubscriberBuffer is the notice buffer of a subscriber that did not
// ask for a size.
const DefaultSubscriberBuffer = 16

// Level is the severity of a notice.
type Level string

// Notice levels.
const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notice is a transient user-visible notification.
type Notice struct {
	Level      Level       `json:"level"`
	Message    string      `json:"message"`
	Code       errors.Code `json:"code,omitempty"`
	Generation uint64      `json:"generation,omitempty"`
	Time       time.Time   `json:"time"`
}

func noticeFor(level Level, err error, gen uint64) Notice {
	return Notice{
		Level:      level,
		Message:    errors.UserMessage(err),
		Code:       errors.GetCode(err),
		Generation: gen,
	}
}

// Subscribe registers a notice listener with the given buffer size (zero
// means DefaultSubscriberBuffer). Notices that do not fit in the buffer are
// dropped for that subscriber. The returned function unsubscribes and closes
// the channel; it is safe to call more than once.
func (w *Workspace) Subscribe(buffer int) (<-chan Notice, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan Notice, buffer)

	w.subsMu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	w.subsMu.Unlock()

	return ch, func() {
		w.subsMu.Lock()
		defer w.subsMu.Unlock()
		if c, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(c)
		}
	}
}

// Subscribers returns the number of registered listeners.
func (w *Workspace) Subscribers() int {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	return len(w.subs)
}

// publish fans n out to every subscriber without blocking.
func (w *Workspace) publish(ctx context.Context, n Notice) {
	if n.Time.IsZero() {
		n.Time = w.now()
	}

	w.subsMu.Lock()
	dropped := 0
	for _, ch := range w.subs {
		select {
		case ch <- n:
		default:
			dropped++
		}
	}
	w.subsMu.Unlock()

	if dropped > 0 {
		w.logger.Debug("dropped notice for slow subscribers", "subscribers", dropped, "level", n.Level)
	}
	observability.Workspace().OnNotice(ctx, string(n.Level), dropped)
}
