package procurement

import (
	"github.com/google/uuid"
)

// ItemRef identifies a persisted row marked for removal
type ItemRef struct {
	ID uuid.UUID `json:"id"`
}

// ItemUpdate carries the accumulated field patch for one persisted row
type ItemUpdate struct {
	ID     uuid.UUID `json:"id"`
	Fields ItemPatch `json:"fields"`
}

// ChangeSet is the three-bucket partial-update payload: rows to insert,
// per-field patches to persisted rows, and ids of persisted rows to delete.
type ChangeSet struct {
	Add    []LineItem   `json:"add"`
	Update []ItemUpdate `json:"update"`
	Remove []ItemRef    `json:"remove"`
}

// IsEmpty returns true when the change set carries no work
func (cs ChangeSet) IsEmpty() bool {
	return len(cs.Add) == 0 && len(cs.Update) == 0 && len(cs.Remove) == 0
}

// ItemLedger reconciles edits to a list of order rows against an immutable
// base snapshot. Rows live in one of three buckets: rows added this session,
// field patches to persisted rows, and persisted rows marked removed. A row's
// bucket is determined by its provenance and never migrates.
//
// ItemLedger is not safe for concurrent use; LedgerSession adds locking.
type ItemLedger struct {
	base         []LineItem
	newRows      []LineItem
	patches      map[uuid.UUID]ItemPatch
	removed      map[uuid.UUID]struct{}
	removedOrder []uuid.UUID
}

// NewItemLedger creates a ledger over a snapshot of persisted rows.
// The snapshot is copied and never mutated afterwards.
func NewItemLedger(existing []LineItem) *ItemLedger {
	base := make([]LineItem, len(existing))
	copy(base, existing)
	for i := range base {
		base[i].IsNew = false
	}
	return &ItemLedger{
		base:    base,
		newRows: make([]LineItem, 0),
		patches: make(map[uuid.UUID]ItemPatch),
		removed: make(map[uuid.UUID]struct{}),
	}
}

// AddItem appends a new row and returns its id so the caller can target it
// for edits immediately. A zero-id row gets a fresh client id.
func (l *ItemLedger) AddItem(defaults LineItem) uuid.UUID {
	row := defaults
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.IsNew = true
	l.newRows = append(l.newRows, row)
	return row.ID
}

// UpdateItem applies a single field edit to a row. New rows are updated in
// place, preserving their position; persisted rows accumulate a patch.
// refData, when present on a reference-field edit, is merged verbatim over
// the recalculator's own output. Unknown ids are a no-op.
func (l *ItemLedger) UpdateItem(id uuid.UUID, field Field, value FieldValue, refData *ProductRef) {
	for idx := range l.newRows {
		if l.newRows[idx].ID != id {
			continue
		}
		patch := Recalculate(l.newRows[idx], field, value)
		if refData != nil && field.Kind() == KindReference {
			patch.Set(FieldProduct, RefValue(*refData))
		}
		patch.ApplyTo(&l.newRows[idx])
		return
	}

	for idx := range l.base {
		if l.base[idx].ID != id {
			continue
		}
		if _, gone := l.removed[id]; gone {
			return
		}
		// Recalculate against the effective row so cascades see prior patches
		current := l.overlay(l.base[idx])
		patch := Recalculate(current, field, value)
		if refData != nil && field.Kind() == KindReference {
			patch.Set(FieldProduct, RefValue(*refData))
		}
		accumulated, ok := l.patches[id]
		if !ok {
			accumulated = NewItemPatch()
		}
		accumulated.Merge(patch)
		l.patches[id] = accumulated
		return
	}
}

// RemoveItem removes a row. New rows are deleted outright and leave no trace
// in the change set; persisted rows are marked removed and keep their id for
// submission. A removed row must not carry a dangling patch. Unknown ids are
// a no-op.
func (l *ItemLedger) RemoveItem(id uuid.UUID) {
	for idx := range l.newRows {
		if l.newRows[idx].ID == id {
			l.removeNewAt(idx)
			return
		}
	}
	for idx := range l.base {
		if l.base[idx].ID != id {
			continue
		}
		if _, gone := l.removed[id]; gone {
			return
		}
		l.removed[id] = struct{}{}
		l.removedOrder = append(l.removedOrder, id)
		delete(l.patches, id)
		return
	}
}

// RemoveNewRowAt removes a new row by its index in the new-row bucket.
// New rows have no server id before first save, so index-based removal is
// the reliable contract for them.
func (l *ItemLedger) RemoveNewRowAt(index int) {
	if index < 0 || index >= len(l.newRows) {
		return
	}
	l.removeNewAt(index)
}

func (l *ItemLedger) removeNewAt(idx int) {
	id := l.newRows[idx].ID
	l.newRows = append(l.newRows[:idx], l.newRows[idx+1:]...)
	// No patch should exist for a new row; drop defensively
	delete(l.patches, id)
}

// MergedView returns, in stable order, the live rows: base rows not removed
// (overlaid with their patches) followed by rows added this session.
// Sequence numbers equal each row's 1-based position in the view.
func (l *ItemLedger) MergedView() []LineItem {
	out := make([]LineItem, 0, len(l.base)+len(l.newRows))
	for idx := range l.base {
		if _, gone := l.removed[l.base[idx].ID]; gone {
			continue
		}
		out = append(out, l.overlay(l.base[idx]))
	}
	out = append(out, l.newRows...)
	for i := range out {
		out[i].Sequence = i + 1
	}
	return out
}

// EffectiveValue resolves a field for a row without exposing the buckets:
// new-row live value, then patch, then the base snapshot value.
func (l *ItemLedger) EffectiveValue(id uuid.UUID, field Field) FieldValue {
	for idx := range l.newRows {
		if l.newRows[idx].ID == id {
			return l.newRows[idx].Value(field)
		}
	}
	for idx := range l.base {
		if l.base[idx].ID != id {
			continue
		}
		if patch, ok := l.patches[id]; ok {
			if v, hit := patch.Get(field); hit {
				return v
			}
		}
		return l.base[idx].Value(field)
	}
	return AbsentValue()
}

// ChangeSet produces the three-bucket submission payload. Repeated calls
// without intervening edits yield identical results.
func (l *ItemLedger) ChangeSet() ChangeSet {
	cs := ChangeSet{
		Add:    make([]LineItem, len(l.newRows)),
		Update: make([]ItemUpdate, 0, len(l.patches)),
		Remove: make([]ItemRef, 0, len(l.removedOrder)),
	}
	copy(cs.Add, l.newRows)
	for idx := range l.base {
		id := l.base[idx].ID
		patch, ok := l.patches[id]
		if !ok || patch.IsEmpty() {
			continue
		}
		cs.Update = append(cs.Update, ItemUpdate{ID: id, Fields: patch})
	}
	for _, id := range l.removedOrder {
		cs.Remove = append(cs.Remove, ItemRef{ID: id})
	}
	return cs
}

// HasChanges returns true when any bucket carries work
func (l *ItemLedger) HasChanges() bool {
	return len(l.newRows) > 0 || len(l.patches) > 0 || len(l.removedOrder) > 0
}

// overlay returns a copy of a base row with its patch applied
func (l *ItemLedger) overlay(row LineItem) LineItem {
	if patch, ok := l.patches[row.ID]; ok {
		patch.ApplyTo(&row)
	}
	return row
}
