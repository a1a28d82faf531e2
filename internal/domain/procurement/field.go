package procurement

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldKind classifies the value type of an editable line-item field
type FieldKind int

const (
	KindNumeric FieldKind = iota
	KindText
	KindBoolean
	KindReference
)

// Field identifies a single line-item field addressable by an edit
type Field string

const (
	FieldQuantity       Field = "quantity"
	FieldUnitPrice      Field = "unit_price"
	FieldDiscountAmount Field = "discount_amount"
	FieldTaxAmount      Field = "tax_amount"
	FieldProduct        Field = "product"
	FieldUnit           Field = "unit"
	FieldDescription    Field = "description"
	FieldIsFOC          Field = "is_foc"

	// Derived fields, written by the recalculator, never edited directly
	FieldBaseQuantity Field = "base_quantity"
	FieldSubTotal     Field = "sub_total"
	FieldNetAmount    Field = "net_amount"
	FieldTotalPrice   Field = "total_price"
)

// Kind returns the value kind of the field
func (f Field) Kind() FieldKind {
	switch f {
	case FieldProduct:
		return KindReference
	case FieldIsFOC:
		return KindBoolean
	case FieldUnit, FieldDescription:
		return KindText
	default:
		return KindNumeric
	}
}

// IsValid checks if the field is a known line-item field
func (f Field) IsValid() bool {
	switch f {
	case FieldQuantity, FieldUnitPrice, FieldDiscountAmount, FieldTaxAmount,
		FieldProduct, FieldUnit, FieldDescription, FieldIsFOC,
		FieldBaseQuantity, FieldSubTotal, FieldNetAmount, FieldTotalPrice:
		return true
	}
	return false
}

// IsDerived returns true for fields whose value is computed from other fields
func (f Field) IsDerived() bool {
	switch f {
	case FieldBaseQuantity, FieldSubTotal, FieldNetAmount, FieldTotalPrice:
		return true
	}
	return false
}

// String returns the string representation of the field
func (f Field) String() string {
	return string(f)
}

// ProductRef carries the product data resolved by an external lookup when a
// product is chosen on a row. The ledger never fetches it itself.
type ProductRef struct {
	ID             uuid.UUID       `json:"id"`
	Code           string          `json:"code,omitempty"`
	Name           string          `json:"name,omitempty"`
	Unit           string          `json:"unit,omitempty"`
	BaseUnit       string          `json:"base_unit,omitempty"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
}

// FieldValue is a tagged union over the kinds of values a field edit can carry
type FieldValue struct {
	kind    FieldKind
	num     decimal.Decimal
	text    string
	flag    bool
	ref     *ProductRef
	present bool
}

// NumericValue wraps a decimal as a field value
func NumericValue(d decimal.Decimal) FieldValue {
	return FieldValue{kind: KindNumeric, num: d, present: true}
}

// NumericValueFromFloat wraps a float64 as a numeric field value
func NumericValueFromFloat(f float64) FieldValue {
	return NumericValue(decimal.NewFromFloat(f))
}

// NumericValueFromString parses a string into a numeric field value.
// Empty or unparsable input coerces to zero, never to an error.
func NumericValueFromString(s string) FieldValue {
	if s == "" {
		return NumericValue(decimal.Zero)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return NumericValue(decimal.Zero)
	}
	return NumericValue(d)
}

// TextValue wraps a string as a field value
func TextValue(s string) FieldValue {
	return FieldValue{kind: KindText, text: s, present: true}
}

// BoolValue wraps a bool as a field value
func BoolValue(b bool) FieldValue {
	return FieldValue{kind: KindBoolean, flag: b, present: true}
}

// RefValue wraps a product reference as a field value
func RefValue(ref ProductRef) FieldValue {
	return FieldValue{kind: KindReference, ref: &ref, present: true}
}

// AbsentValue represents a missing input (null/undefined at the edge)
func AbsentValue() FieldValue {
	return FieldValue{}
}

// Kind returns the value kind
func (v FieldValue) Kind() FieldKind {
	return v.kind
}

// IsAbsent returns true for a missing input
func (v FieldValue) IsAbsent() bool {
	return !v.present
}

// Decimal returns the numeric value; non-numeric and absent values yield zero
func (v FieldValue) Decimal() decimal.Decimal {
	if !v.present || v.kind != KindNumeric {
		return decimal.Zero
	}
	return v.num
}

// Text returns the text value, or "" for non-text values
func (v FieldValue) Text() string {
	if !v.present || v.kind != KindText {
		return ""
	}
	return v.text
}

// Bool returns the boolean value, or false for non-boolean values
func (v FieldValue) Bool() bool {
	if !v.present || v.kind != KindBoolean {
		return false
	}
	return v.flag
}

// Ref returns the product reference, or nil for non-reference values
func (v FieldValue) Ref() *ProductRef {
	if !v.present || v.kind != KindReference {
		return nil
	}
	return v.ref
}

// coerce normalizes an incoming value for the target field. Numeric fields
// coerce absent or mistyped input to zero so arithmetic never sees garbage.
func coerce(f Field, v FieldValue) FieldValue {
	switch f.Kind() {
	case KindNumeric:
		if v.IsAbsent() || v.kind != KindNumeric {
			return NumericValue(decimal.Zero)
		}
		return v
	case KindText:
		if v.IsAbsent() || v.kind != KindText {
			return TextValue("")
		}
		return v
	case KindBoolean:
		if v.IsAbsent() || v.kind != KindBoolean {
			return BoolValue(false)
		}
		return v
	default:
		return v
	}
}

// MarshalJSON implements json.Marshaler
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	case KindBoolean:
		return json.Marshal(v.flag)
	case KindReference:
		return json.Marshal(v.ref)
	}
	return nil, fmt.Errorf("unknown field value kind %d", v.kind)
}

// decodeFieldValue decodes a raw JSON value using the field's kind as the
// type discriminator. Nulls and mistyped numerics follow the coercion table.
func decodeFieldValue(f Field, raw json.RawMessage) (FieldValue, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return coerce(f, AbsentValue()), nil
	}
	switch f.Kind() {
	case KindNumeric:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return NumericValueFromString(s), nil
		}
		var d decimal.Decimal
		if err := json.Unmarshal(raw, &d); err != nil {
			return NumericValue(decimal.Zero), nil
		}
		return NumericValue(d), nil
	case KindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return FieldValue{}, fmt.Errorf("field %s: %w", f, err)
		}
		return TextValue(s), nil
	case KindBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return FieldValue{}, fmt.Errorf("field %s: %w", f, err)
		}
		return BoolValue(b), nil
	default:
		var ref ProductRef
		if err := json.Unmarshal(raw, &ref); err != nil {
			return FieldValue{}, fmt.Errorf("field %s: %w", f, err)
		}
		return RefValue(ref), nil
	}
}
