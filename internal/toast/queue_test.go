package toast

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ecotrackth/ecotrack-backend/pkg/config"
	"github.com/ecotrackth/ecotrack-backend/pkg/enums"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testConfig() config.ToastConfig {
	return config.ToastConfig{
		Tick:            100 * time.Millisecond,
		ExitSettleDelay: 300 * time.Millisecond,
		MaxVisible:      5,
	}
}

func newTestManager(t *testing.T, clock *fakeClock) *Manager {
	t.Helper()
	m, err := NewManager(testConfig(), clock.Now)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

// tick advances the clock by one tick and runs the step, mirroring Run.
func tick(m *Manager, clock *fakeClock) {
	clock.Advance(m.cfg.Tick)
	m.Tick()
}

func stateOf(t *testing.T, m *Manager, deviceID, toastID uuid.UUID) (State, bool) {
	t.Helper()
	for _, item := range m.Queued(deviceID) {
		if item.ID == toastID {
			return item.State, true
		}
	}
	return "", false
}

func TestAutoCloseRemovesWithinDurationPlusSettle(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)
	deviceID := uuid.New()

	id := m.Enqueue(deviceID, enums.ToastTypeSuccess, "Saved", "Entry recorded.", Options{
		Duration: time.Second,
	})

	// duration + settle = 1300ms = 13 ticks at 100ms.
	for i := 0; i < 13; i++ {
		tick(m, clock)
	}
	if _, alive := stateOf(t, m, deviceID, id); alive {
		t.Fatal("toast must be removed within duration + exit settle")
	}
	if len(m.Visible(deviceID)) != 0 {
		t.Fatal("removed toast must not remain visible")
	}
}

func TestAutoCloseDisabledKeepsToastAlive(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)
	deviceID := uuid.New()

	off := false
	id := m.Enqueue(deviceID, enums.ToastTypeWarning, "Heads up", "Stays until dismissed.", Options{
		Duration:  time.Second,
		AutoClose: &off,
	})

	for i := 0; i < 50; i++ {
		tick(m, clock)
	}
	state, alive := stateOf(t, m, deviceID, id)
	if !alive || state != StateVisible {
		t.Fatalf("sticky toast must stay visible, got %v alive=%v", state, alive)
	}
}

func TestVisibleWindowCapsAtMostRecent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)
	deviceID := uuid.New()

	var ids []uuid.UUID
	for i := 0; i < 7; i++ {
		ids = append(ids, m.Enqueue(deviceID, enums.ToastTypeInfo, "Toast", "body", Options{}))
	}

	visible := m.Visible(deviceID)
	if len(visible) != 5 {
		t.Fatalf("expected 5 rendered toasts, got %d", len(visible))
	}
	// The window holds the 5 most recently added, in insertion order.
	for i, item := range visible {
		if item.ID != ids[i+2] {
			t.Fatalf("window slot %d holds wrong toast", i)
		}
	}
	if len(m.Queued(deviceID)) != 7 {
		t.Fatal("older toasts stay logically queued")
	}
}

func TestDismissShortCircuitsCountdown(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)
	deviceID := uuid.New()

	id := m.Enqueue(deviceID, enums.ToastTypeInfo, "Toast", "body", Options{Duration: time.Minute})
	tick(m, clock)

	if !m.Dismiss(deviceID, id) {
		t.Fatal("dismiss of a visible toast must succeed")
	}
	state, _ := stateOf(t, m, deviceID, id)
	if state != StateExiting {
		t.Fatalf("dismissed toast should be exiting, got %v", state)
	}

	// Settle delay still applies: 300ms = 3 ticks.
	tick(m, clock)
	tick(m, clock)
	if _, alive := stateOf(t, m, deviceID, id); !alive {
		t.Fatal("toast removed before the settle delay elapsed")
	}
	tick(m, clock)
	if _, alive := stateOf(t, m, deviceID, id); alive {
		t.Fatal("toast must be removed after the settle delay")
	}
}

func TestDismissWhileExitingIsIgnored(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)
	deviceID := uuid.New()

	id := m.Enqueue(deviceID, enums.ToastTypeInfo, "Toast", "body", Options{Duration: time.Minute})
	tick(m, clock)

	if !m.Dismiss(deviceID, id) {
		t.Fatal("first dismiss must succeed")
	}
	if m.Dismiss(deviceID, id) {
		t.Fatal("second dismiss of an exiting toast must be ignored")
	}
}

func TestDismissUnknownToast(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)

	if m.Dismiss(uuid.New(), uuid.New()) {
		t.Fatal("dismissing an unknown toast must report false")
	}
}

func TestEnqueueDefaults(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)
	deviceID := uuid.New()

	m.Enqueue(deviceID, enums.ToastTypeAchievement, "Unlocked!", "First entry logged.", Options{})
	queued := m.Queued(deviceID)
	if len(queued) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(queued))
	}
	item := queued[0]
	if item.Duration != DefaultDuration || !item.AutoClose {
		t.Fatalf("defaults not applied: %+v", item)
	}
	if item.State != StateEntering || item.Progress != 100 {
		t.Fatalf("new toast must be entering at full progress: %+v", item)
	}
}

func TestQueuesAreIsolatedPerDevice(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)}
	m := newTestManager(t, clock)
	deviceA := uuid.New()
	deviceB := uuid.New()

	m.Push(deviceA, enums.ToastTypeInfo, "A", "only for a", nil)
	if len(m.Queued(deviceB)) != 0 {
		t.Fatal("device queues must not leak")
	}
}
