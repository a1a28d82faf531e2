package procurement

import (
	"encoding/json"
	"sort"
)

// ItemPatch is a sparse set of field writes produced by the recalculator.
// Only fields that must change as a result of an edit are present.
type ItemPatch struct {
	values map[Field]FieldValue
}

// NewItemPatch creates an empty patch
func NewItemPatch() ItemPatch {
	return ItemPatch{values: make(map[Field]FieldValue)}
}

// Set records a field write
func (p *ItemPatch) Set(f Field, v FieldValue) {
	if p.values == nil {
		p.values = make(map[Field]FieldValue)
	}
	p.values[f] = v
}

// Get returns the recorded value for a field, if any
func (p ItemPatch) Get(f Field) (FieldValue, bool) {
	v, ok := p.values[f]
	return v, ok
}

// Has returns true if the patch writes the field
func (p ItemPatch) Has(f Field) bool {
	_, ok := p.values[f]
	return ok
}

// Fields returns the patched fields in stable (sorted) order
func (p ItemPatch) Fields() []Field {
	fields := make([]Field, 0, len(p.values))
	for f := range p.values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Len returns the number of patched fields
func (p ItemPatch) Len() int {
	return len(p.values)
}

// IsEmpty returns true when the patch writes nothing
func (p ItemPatch) IsEmpty() bool {
	return len(p.values) == 0
}

// Merge overlays the other patch onto this one; later writes win
func (p *ItemPatch) Merge(other ItemPatch) {
	for f, v := range other.values {
		p.Set(f, v)
	}
}

// ApplyTo writes all patched fields onto the item
func (p ItemPatch) ApplyTo(item *LineItem) {
	for _, f := range p.Fields() {
		item.setField(f, p.values[f])
	}
}

// MarshalJSON implements json.Marshaler
func (p ItemPatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]FieldValue, len(p.values))
	for f, v := range p.values {
		out[string(f)] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler, decoding each value by the
// field's declared kind. Unknown fields are ignored.
func (p *ItemPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.values = make(map[Field]FieldValue, len(raw))
	for name, rawVal := range raw {
		f := Field(name)
		if !f.IsValid() {
			continue
		}
		v, err := decodeFieldValue(f, rawVal)
		if err != nil {
			return err
		}
		p.values[f] = v
	}
	return nil
}

// Recalculate computes the patch resulting from a single field edit on a row.
// It is pure: the input row is never mutated and no I/O happens here.
//
// Cascades by edited field:
//
//	quantity        -> base_quantity, sub_total, net_amount, total_price
//	unit_price      -> sub_total, net_amount, total_price
//	discount_amount -> net_amount, total_price
//	tax_amount      -> total_price
//	anything else   -> only the edited field
func Recalculate(item LineItem, field Field, value FieldValue) ItemPatch {
	v := coerce(field, value)
	patch := NewItemPatch()
	patch.Set(field, v)

	switch field {
	case FieldQuantity:
		qty := v.Decimal()
		subTotal := qty.Mul(item.UnitPrice)
		netAmount := subTotal.Sub(item.DiscountAmount)
		patch.Set(FieldBaseQuantity, NumericValue(qty.Mul(item.ConversionRate)))
		patch.Set(FieldSubTotal, NumericValue(subTotal))
		patch.Set(FieldNetAmount, NumericValue(netAmount))
		patch.Set(FieldTotalPrice, NumericValue(netAmount.Add(item.TaxAmount)))
	case FieldUnitPrice:
		subTotal := item.Quantity.Mul(v.Decimal())
		netAmount := subTotal.Sub(item.DiscountAmount)
		patch.Set(FieldSubTotal, NumericValue(subTotal))
		patch.Set(FieldNetAmount, NumericValue(netAmount))
		patch.Set(FieldTotalPrice, NumericValue(netAmount.Add(item.TaxAmount)))
	case FieldDiscountAmount:
		netAmount := item.SubTotal.Sub(v.Decimal())
		patch.Set(FieldNetAmount, NumericValue(netAmount))
		patch.Set(FieldTotalPrice, NumericValue(netAmount.Add(item.TaxAmount)))
	case FieldTaxAmount:
		patch.Set(FieldTotalPrice, NumericValue(item.NetAmount.Add(v.Decimal())))
	}

	return patch
}
