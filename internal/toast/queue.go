package toast

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/config"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
	pkgerrors "github.com/ecotrackth/ecotrack-backend/pkg/errors"
)

// State is a toast's lifecycle stage. Transitions only move forward:
// Entering -> Visible -> Exiting -> Removed.
type State string

const (
	StateEntering State = "entering"
	StateVisible  State = "visible"
	StateExiting  State = "exiting"
	StateRemoved  State = "removed"
)

// DefaultDuration applies when the caller does not override it.
const DefaultDuration = 5 * time.Second

// Action is a button rendered on a toast.
type Action struct {
	Label string `json:"label"`
	Style string `json:"style"`
}

// Toast is one live queue entry.
type Toast struct {
	ID          uuid.UUID       `json:"id"`
	Type        enums.ToastType `json:"type"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Duration    time.Duration   `json:"durationMs"`
	AutoClose   bool            `json:"autoClose"`
	SoundEffect *string         `json:"soundEffect,omitempty"`
	Actions     []Action        `json:"actions,omitempty"`
	State       State           `json:"state"`
	// Progress counts down 100 -> 0 while the toast is visible.
	Progress float64 `json:"progress"`

	exitingAt time.Time
}

// Options override the defaults at enqueue time.
type Options struct {
	Duration    time.Duration
	AutoClose   *bool
	SoundEffect *string
	Actions     []Action
}

// Manager keeps an in-memory toast queue per device and drives every
// lifecycle transition from a single shared tick. Timer state never touches
// storage; a process restart drops live toasts by design.
type Manager struct {
	mu     sync.Mutex
	queues map[uuid.UUID][]*Toast

	cfg     config.ToastConfig
	now     func() time.Time
	pending pendingSource
}

// drainBatchSize bounds how many relayed records one tick ingests.
const drainBatchSize = 64

type pendingSource interface {
	DrainPendingToasts(ctx context.Context, max int64) ([]string, error)
}

// NewManager builds a Manager. A nil now falls back to wall clock.
func NewManager(cfg config.ToastConfig, now func() time.Time) (*Manager, error) {
	if cfg.Tick <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "toast tick must be positive")
	}
	if cfg.MaxVisible <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "toast max visible must be positive")
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{
		queues: map[uuid.UUID][]*Toast{},
		cfg:    cfg,
		now:    now,
	}, nil
}

// AttachPending connects the cross-process toast feed. Records drained each
// tick are enqueued as if pushed locally. Call before Run.
func (m *Manager) AttachPending(src pendingSource) {
	m.pending = src
}

// Run drives the queue until the context ends. One goroutine per process.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.DrainPending(ctx)
			m.Tick()
		}
	}
}

// DrainPending ingests relayed toasts from the shared feed. Records that do
// not parse are dropped; a transient feed error is retried on the next tick.
func (m *Manager) DrainPending(ctx context.Context) error {
	if m.pending == nil {
		return nil
	}
	items, err := m.pending.DrainPendingToasts(ctx, drainBatchSize)
	if err != nil {
		return err
	}
	for _, raw := range items {
		var rec relayRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		deviceID, err := uuid.Parse(rec.DeviceID)
		if err != nil {
			continue
		}
		kind, err := enums.ParseToastType(rec.Type)
		if err != nil {
			kind = enums.ToastTypeInfo
		}
		m.Enqueue(deviceID, kind, rec.Title, rec.Message, Options{SoundEffect: rec.SoundEffect})
	}
	return nil
}

// Enqueue appends a toast and starts its entrance transition. Returns the
// assigned id.
func (m *Manager) Enqueue(deviceID uuid.UUID, kind enums.ToastType, title, message string, opts Options) uuid.UUID {
	t := &Toast{
		ID:          uuid.New(),
		Type:        kind,
		Title:       title,
		Message:     message,
		Duration:    DefaultDuration,
		AutoClose:   true,
		SoundEffect: opts.SoundEffect,
		Actions:     opts.Actions,
		State:       StateEntering,
		Progress:    100,
	}
	if opts.Duration > 0 {
		t.Duration = opts.Duration
	}
	if opts.AutoClose != nil {
		t.AutoClose = *opts.AutoClose
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[deviceID] = append(m.queues[deviceID], t)
	return t.ID
}

// Push satisfies the dispatcher's sink with defaulted options.
func (m *Manager) Push(deviceID uuid.UUID, kind enums.ToastType, title, message string, soundEffect *string) {
	m.Enqueue(deviceID, kind, title, message, Options{SoundEffect: soundEffect})
}

// Dismiss short-circuits the countdown and starts the exit transition. A
// toast already exiting or removed ignores the request.
func (m *Manager) Dismiss(deviceID, toastID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.queues[deviceID] {
		if t.ID != toastID {
			continue
		}
		if t.State == StateExiting || t.State == StateRemoved {
			return false
		}
		m.startExit(t)
		return true
	}
	return false
}

// Visible returns the rendered window: the MaxVisible most recently added
// live toasts, in insertion order. Older live entries stay queued but are
// not rendered.
func (m *Manager) Visible(deviceID uuid.UUID) []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.queues[deviceID]
	start := len(live) - m.cfg.MaxVisible
	if start < 0 {
		start = 0
	}
	out := make([]Toast, 0, len(live)-start)
	for _, t := range live[start:] {
		out = append(out, *t)
	}
	return out
}

// Queued returns the full live queue, rendered or not.
func (m *Manager) Queued(deviceID uuid.UUID) []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Toast, 0, len(m.queues[deviceID]))
	for _, t := range m.queues[deviceID] {
		out = append(out, *t)
	}
	return out
}

// Tick advances every toast one step. Entering settles to visible on the
// next tick; visible auto-close toasts count their progress down; exiting
// toasts are removed once the settle delay has elapsed.
func (m *Manager) Tick() {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for deviceID, queue := range m.queues {
		kept := queue[:0]
		for _, t := range queue {
			switch t.State {
			case StateEntering:
				// The entrance settles and the countdown starts on the
				// same tick, so total lifetime stays duration + settle.
				t.State = StateVisible
				fallthrough
			case StateVisible:
				if t.AutoClose {
					t.Progress -= 100 * float64(m.cfg.Tick) / float64(t.Duration)
					if t.Progress <= 0 {
						t.Progress = 0
						m.startExit(t)
					}
				}
			case StateExiting:
				if now.Sub(t.exitingAt) >= m.cfg.ExitSettleDelay {
					t.State = StateRemoved
				}
			}
			if t.State != StateRemoved {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(m.queues, deviceID)
			continue
		}
		m.queues[deviceID] = kept
	}
}

func (m *Manager) startExit(t *Toast) {
	t.State = StateExiting
	t.exitingAt = m.now()
}
