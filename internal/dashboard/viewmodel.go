package dashboard

import (
	"log/slog"
	"sync"

	"github.com/nao1215/trackerscope/internal/model"
)

// ViewModel owns the dashboard state for one browser tab: it consumes
// site snapshots, recomputes the view state synchronously, and publishes
// each result to subscribers.
//
// Design decision: recomputation runs start-to-finish under the mutex,
// so at most one recomputation is ever in flight and a new snapshot
// simply supersedes the previous result. Published states are immutable,
// which keeps subscribers lock-free.
type ViewModel struct {
	// mu guards the current state and the subscriber list.
	mu sync.Mutex

	// snapshot is the most recently delivered site snapshot.
	// Nil means no site is loaded.
	snapshot *model.SiteSnapshot

	// state is the most recently published view state. Never nil after
	// construction; "no site" is represented by the empty state.
	state *ViewState

	// subscribers maps subscription IDs to notification callbacks.
	subscribers map[int]func(*ViewState)

	// nextID is the ID assigned to the next subscription.
	nextID int

	// inbox holds the at-most-one pending broken-site report.
	inbox *Inbox

	// logger is used for structured logging of state changes.
	logger *slog.Logger
}

// ViewModelOption configures a ViewModel.
type ViewModelOption func(*ViewModel)

// WithLogger sets a custom logger for the view model.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) ViewModelOption {
	return func(vm *ViewModel) {
		vm.logger = logger
	}
}

// NewViewModel creates a ViewModel with no site loaded.
func NewViewModel(opts ...ViewModelOption) *ViewModel {
	vm := &ViewModel{
		subscribers: make(map[int]func(*ViewState)),
		inbox:       NewInbox(),
		state:       NewViewState(nil),
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.logger == nil {
		vm.logger = slog.Default()
	}
	return vm
}

// SetSnapshot delivers a new site snapshot, recomputes the view state
// from scratch, and publishes the result to all subscribers. A nil
// snapshot means "no site loaded" and resets the dashboard to empty.
func (vm *ViewModel) SetSnapshot(snapshot *model.SiteSnapshot) *ViewState {
	vm.mu.Lock()
	vm.snapshot = snapshot
	vm.state = NewViewState(snapshot)
	state := vm.state
	subs := make([]func(*ViewState), 0, len(vm.subscribers))
	for _, fn := range vm.subscribers {
		subs = append(subs, fn)
	}
	vm.mu.Unlock()

	vm.logger.Debug("dashboard state recomputed",
		"url", state.URL,
		"trackers", len(state.Trackers),
		"blocked", state.TrackersBlocked,
		"total", state.TrackersTotal,
		"grade", string(state.Grade),
	)

	// Notify outside the lock so a subscriber may unsubscribe or read
	// State() from its callback without deadlocking.
	for _, fn := range subs {
		fn(state)
	}
	return state
}

// Reset clears the dashboard back to the empty state.
// Equivalent to SetSnapshot(nil).
func (vm *ViewModel) Reset() *ViewState {
	return vm.SetSnapshot(nil)
}

// State returns the most recently published view state.
func (vm *ViewModel) State() *ViewState {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.state
}

// Subscription represents one registered observer of the view model.
// Callers must call Unsubscribe at teardown; subscriptions are never
// released implicitly.
type Subscription struct {
	vm *ViewModel
	id int

	once sync.Once
}

// Unsubscribe removes the subscription from the view model.
// Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.vm.mu.Lock()
		delete(s.vm.subscribers, s.id)
		s.vm.mu.Unlock()
	})
}

// Subscribe registers a callback invoked with every published view
// state. The callback runs on the goroutine that delivered the
// snapshot, after the state has been published.
func (vm *ViewModel) Subscribe(fn func(*ViewState)) *Subscription {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	id := vm.nextID
	vm.nextID++
	vm.subscribers[id] = fn
	return &Subscription{vm: vm, id: id}
}

// ReportBrokenSite places the current snapshot in the broken-site
// inbox for the reporting collaborator to consume. The inbox holds at
// most one pending report; a newer report replaces an unconsumed one.
// Reporting with no site loaded is a no-op.
func (vm *ViewModel) ReportBrokenSite() {
	vm.mu.Lock()
	snapshot := vm.snapshot
	vm.mu.Unlock()

	if snapshot == nil {
		return
	}
	vm.inbox.Put(snapshot)
	vm.logger.Info("broken site reported", "url", snapshot.URL)
}

// BrokenSiteReports returns the inbox holding pending broken-site
// reports.
func (vm *ViewModel) BrokenSiteReports() *Inbox {
	return vm.inbox
}
