package procurement

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultValidationDebounce is the delay before a scheduled validation pass
// fires when none is configured explicitly.
const DefaultValidationDebounce = 300 * time.Millisecond

// Revalidator holds at most one pending validation pass. Scheduling a new
// pass supersedes the pending one, so validation never runs against a state
// that has already been edited past.
type Revalidator struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	gen     uint64
	pending func()
}

// NewRevalidator creates a revalidator with the given debounce delay
func NewRevalidator(delay time.Duration) *Revalidator {
	if delay <= 0 {
		delay = DefaultValidationDebounce
	}
	return &Revalidator{delay: delay}
}

// Schedule cancels any pending pass and schedules fn after the debounce delay
func (r *Revalidator) Schedule(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.gen++
	r.pending = fn
	gen := r.gen
	r.timer = time.AfterFunc(r.delay, func() { r.fire(gen) })
}

func (r *Revalidator) fire(gen uint64) {
	r.mu.Lock()
	if gen != r.gen || r.pending == nil {
		r.mu.Unlock()
		return
	}
	fn := r.pending
	r.pending = nil
	r.mu.Unlock()
	fn()
}

// Flush runs the pending pass immediately, if any
func (r *Revalidator) Flush() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.gen++
	fn := r.pending
	r.pending = nil
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Cancel drops the pending pass without running it
func (r *Revalidator) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.gen++
	r.pending = nil
}

// ValidationFunc receives the merged view current at the time the pass fires
type ValidationFunc func(items []LineItem)

// LedgerSession is the controller layer over an ItemLedger for one editing
// session: it applies the default-row template on add, schedules a
// supersedable validation pass after every mutation, and produces the
// submission payload. It is safe for concurrent use.
type LedgerSession struct {
	mu       sync.Mutex
	ledger   *ItemLedger
	template func() LineItem
	validate ValidationFunc
	reval    *Revalidator
}

// LedgerSessionOption configures a LedgerSession
type LedgerSessionOption func(*LedgerSession)

// WithRowTemplate overrides the default-row template used by AddItem
func WithRowTemplate(fn func() LineItem) LedgerSessionOption {
	return func(s *LedgerSession) {
		s.template = fn
	}
}

// WithValidation installs a debounced validation callback. The callback runs
// off the editing goroutine against a snapshot taken when the pass fires.
func WithValidation(debounce time.Duration, fn ValidationFunc) LedgerSessionOption {
	return func(s *LedgerSession) {
		s.validate = fn
		s.reval = NewRevalidator(debounce)
	}
}

// NewLedgerSession starts an editing session over a snapshot of existing rows
func NewLedgerSession(existing []LineItem, opts ...LedgerSessionOption) *LedgerSession {
	s := &LedgerSession{
		ledger:   NewItemLedger(existing),
		template: NewDraftLineItem,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Items returns the current merged view
func (s *LedgerSession) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.MergedView()
}

// AddItem creates a new row from the template and returns its id
func (s *LedgerSession) AddItem() uuid.UUID {
	s.mu.Lock()
	id := s.ledger.AddItem(s.template())
	s.mu.Unlock()
	s.scheduleValidation()
	return id
}

// UpdateItem applies a single field edit
func (s *LedgerSession) UpdateItem(id uuid.UUID, field Field, value FieldValue, refData *ProductRef) {
	s.mu.Lock()
	s.ledger.UpdateItem(id, field, value, refData)
	s.mu.Unlock()
	s.scheduleValidation()
}

// RemoveItem removes a row. New rows must be addressed by their index in the
// new-row bucket; persisted rows by id.
func (s *LedgerSession) RemoveItem(id uuid.UUID, isNew bool, index int) {
	s.mu.Lock()
	if isNew {
		s.ledger.RemoveNewRowAt(index)
	} else {
		s.ledger.RemoveItem(id)
	}
	s.mu.Unlock()
	s.scheduleValidation()
}

// ItemValue resolves a field for a row across the buckets
func (s *LedgerSession) ItemValue(id uuid.UUID, field Field) FieldValue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.EffectiveValue(id, field)
}

// ChangeSet produces the three-bucket submission payload
func (s *LedgerSession) ChangeSet() ChangeSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ChangeSet()
}

// HasChanges returns true when the session carries unsaved work
func (s *LedgerSession) HasChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.HasChanges()
}

// Flush runs any pending validation pass immediately; call before save
func (s *LedgerSession) Flush() {
	if s.reval != nil {
		s.reval.Flush()
	}
}

// Close cancels any pending validation pass
func (s *LedgerSession) Close() {
	if s.reval != nil {
		s.reval.Cancel()
	}
}

func (s *LedgerSession) scheduleValidation() {
	if s.validate == nil || s.reval == nil {
		return
	}
	s.reval.Schedule(func() {
		s.validate(s.Items())
	})
}
