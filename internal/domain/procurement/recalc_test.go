package procurement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testRow(qty, price, discount, tax string) LineItem {
	item := NewDraftLineItem()
	item.Quantity = dec(qty)
	item.UnitPrice = dec(price)
	item.DiscountAmount = dec(discount)
	item.TaxAmount = dec(tax)
	item.Recalculate()
	return item
}

// ============================================
// Field Tests
// ============================================

func TestField_Kind(t *testing.T) {
	tests := []struct {
		field Field
		kind  FieldKind
	}{
		{FieldQuantity, KindNumeric},
		{FieldUnitPrice, KindNumeric},
		{FieldDiscountAmount, KindNumeric},
		{FieldTaxAmount, KindNumeric},
		{FieldBaseQuantity, KindNumeric},
		{FieldSubTotal, KindNumeric},
		{FieldNetAmount, KindNumeric},
		{FieldTotalPrice, KindNumeric},
		{FieldProduct, KindReference},
		{FieldIsFOC, KindBoolean},
		{FieldUnit, KindText},
		{FieldDescription, KindText},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.field.Kind())
		})
	}
}

func TestField_IsDerived(t *testing.T) {
	assert.True(t, FieldBaseQuantity.IsDerived())
	assert.True(t, FieldSubTotal.IsDerived())
	assert.True(t, FieldNetAmount.IsDerived())
	assert.True(t, FieldTotalPrice.IsDerived())
	assert.False(t, FieldQuantity.IsDerived())
	assert.False(t, FieldProduct.IsDerived())
}

func TestNumericValueFromString_Coercion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string coerces to zero", "", "0"},
		{"garbage coerces to zero", "abc", "0"},
		{"valid decimal parses", "12.5", "12.5"},
		{"negative parses", "-3", "-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NumericValueFromString(tt.input)
			assert.True(t, v.Decimal().Equal(dec(tt.want)))
		})
	}
}

// ============================================
// Recalculate Tests
// ============================================

func TestRecalculate_QuantityCascade(t *testing.T) {
	item := testRow("10", "5.00", "5.00", "4.50")
	require.True(t, item.SubTotal.Equal(dec("50.00")))
	require.True(t, item.NetAmount.Equal(dec("45.00")))
	require.True(t, item.TotalPrice.Equal(dec("49.50")))

	patch := Recalculate(item, FieldQuantity, NumericValue(dec("12")))

	want := map[Field]string{
		FieldQuantity:     "12",
		FieldBaseQuantity: "12",
		FieldSubTotal:     "60.00",
		FieldNetAmount:    "55.00",
		FieldTotalPrice:   "59.50",
	}
	assert.Equal(t, len(want), patch.Len())
	for f, expected := range want {
		v, ok := patch.Get(f)
		require.True(t, ok, "missing field %s", f)
		assert.True(t, v.Decimal().Equal(dec(expected)), "field %s: got %s want %s", f, v.Decimal(), expected)
	}
}

func TestRecalculate_QuantityUsesConversionRate(t *testing.T) {
	item := testRow("2", "10", "0", "0")
	item.ConversionRate = dec("12") // e.g. a case of 12 bottles

	patch := Recalculate(item, FieldQuantity, NumericValue(dec("3")))

	base, ok := patch.Get(FieldBaseQuantity)
	require.True(t, ok)
	assert.True(t, base.Decimal().Equal(dec("36")))
}

func TestRecalculate_PriceCascade(t *testing.T) {
	item := testRow("10", "5.00", "5.00", "4.50")

	patch := Recalculate(item, FieldUnitPrice, NumericValue(dec("6.00")))

	assert.Equal(t, 4, patch.Len())
	assert.False(t, patch.Has(FieldBaseQuantity), "price edit must not touch base quantity")
	sub, _ := patch.Get(FieldSubTotal)
	net, _ := patch.Get(FieldNetAmount)
	total, _ := patch.Get(FieldTotalPrice)
	assert.True(t, sub.Decimal().Equal(dec("60.00")))
	assert.True(t, net.Decimal().Equal(dec("55.00")))
	assert.True(t, total.Decimal().Equal(dec("59.50")))
}

func TestRecalculate_DiscountCascade(t *testing.T) {
	item := testRow("10", "5.00", "0", "4.50")

	patch := Recalculate(item, FieldDiscountAmount, NumericValue(dec("5.00")))

	assert.Equal(t, 3, patch.Len())
	assert.False(t, patch.Has(FieldSubTotal), "discount edit must not touch subtotal")
	net, _ := patch.Get(FieldNetAmount)
	total, _ := patch.Get(FieldTotalPrice)
	assert.True(t, net.Decimal().Equal(dec("45.00")))
	assert.True(t, total.Decimal().Equal(dec("49.50")))
}

func TestRecalculate_TaxCascade(t *testing.T) {
	item := testRow("10", "5.00", "5.00", "0")

	patch := Recalculate(item, FieldTaxAmount, NumericValue(dec("4.50")))

	assert.Equal(t, 2, patch.Len())
	total, _ := patch.Get(FieldTotalPrice)
	assert.True(t, total.Decimal().Equal(dec("49.50")))
}

func TestRecalculate_NonNumericFieldNoCascade(t *testing.T) {
	item := testRow("10", "5.00", "0", "0")

	patch := Recalculate(item, FieldDescription, TextValue("urgent"))

	assert.Equal(t, 1, patch.Len())
	v, ok := patch.Get(FieldDescription)
	require.True(t, ok)
	assert.Equal(t, "urgent", v.Text())
}

func TestRecalculate_AbsentNumericCoercesToZero(t *testing.T) {
	item := testRow("10", "5.00", "5.00", "4.50")

	patch := Recalculate(item, FieldQuantity, AbsentValue())

	qty, _ := patch.Get(FieldQuantity)
	sub, _ := patch.Get(FieldSubTotal)
	net, _ := patch.Get(FieldNetAmount)
	total, _ := patch.Get(FieldTotalPrice)
	assert.True(t, qty.Decimal().IsZero())
	assert.True(t, sub.Decimal().IsZero())
	assert.True(t, net.Decimal().Equal(dec("-5.00")))
	assert.True(t, total.Decimal().Equal(dec("-0.50")))
}

func TestRecalculate_DoesNotMutateInput(t *testing.T) {
	item := testRow("10", "5.00", "0", "0")
	before := item

	Recalculate(item, FieldQuantity, NumericValue(dec("99")))

	assert.True(t, before.Quantity.Equal(item.Quantity))
	assert.True(t, before.SubTotal.Equal(item.SubTotal))
}

// Recalculation consistency: after any single edit the three derived
// equations hold simultaneously.
func TestRecalculate_ConsistencyAfterAnyEdit(t *testing.T) {
	edits := []struct {
		field Field
		value string
	}{
		{FieldQuantity, "7"},
		{FieldUnitPrice, "3.25"},
		{FieldDiscountAmount, "2.10"},
		{FieldTaxAmount, "0.99"},
	}

	for _, edit := range edits {
		t.Run(string(edit.field), func(t *testing.T) {
			item := testRow("10", "5.00", "5.00", "4.50")
			patch := Recalculate(item, edit.field, NumericValue(dec(edit.value)))
			patch.ApplyTo(&item)

			assert.True(t, item.SubTotal.Equal(item.Quantity.Mul(item.UnitPrice)))
			assert.True(t, item.NetAmount.Equal(item.SubTotal.Sub(item.DiscountAmount)))
			assert.True(t, item.TotalPrice.Equal(item.NetAmount.Add(item.TaxAmount)))
			assert.True(t, item.BaseQuantity.Equal(item.Quantity.Mul(item.ConversionRate)))
		})
	}
}

// ============================================
// ItemPatch Tests
// ============================================

func TestItemPatch_MergeLaterWins(t *testing.T) {
	a := NewItemPatch()
	a.Set(FieldQuantity, NumericValue(dec("1")))
	a.Set(FieldDescription, TextValue("first"))

	b := NewItemPatch()
	b.Set(FieldQuantity, NumericValue(dec("2")))

	a.Merge(b)

	qty, _ := a.Get(FieldQuantity)
	desc, _ := a.Get(FieldDescription)
	assert.True(t, qty.Decimal().Equal(dec("2")))
	assert.Equal(t, "first", desc.Text())
}

func TestItemPatch_JSONRoundTrip(t *testing.T) {
	p := NewItemPatch()
	p.Set(FieldQuantity, NumericValue(dec("12.5")))
	p.Set(FieldDescription, TextValue("note"))
	p.Set(FieldIsFOC, BoolValue(true))

	data, err := p.MarshalJSON()
	require.NoError(t, err)

	var decoded ItemPatch
	require.NoError(t, decoded.UnmarshalJSON(data))

	qty, ok := decoded.Get(FieldQuantity)
	require.True(t, ok)
	assert.True(t, qty.Decimal().Equal(dec("12.5")))
	desc, _ := decoded.Get(FieldDescription)
	assert.Equal(t, "note", desc.Text())
	foc, _ := decoded.Get(FieldIsFOC)
	assert.True(t, foc.Bool())
}

func TestItemPatch_UnmarshalNullNumericCoercesToZero(t *testing.T) {
	var p ItemPatch
	require.NoError(t, p.UnmarshalJSON([]byte(`{"quantity":null,"unit_price":""}`)))

	qty, ok := p.Get(FieldQuantity)
	require.True(t, ok)
	assert.True(t, qty.Decimal().IsZero())
	price, ok := p.Get(FieldUnitPrice)
	require.True(t, ok)
	assert.True(t, price.Decimal().IsZero())
}

func TestItemPatch_UnmarshalSkipsUnknownFields(t *testing.T) {
	var p ItemPatch
	require.NoError(t, p.UnmarshalJSON([]byte(`{"quantity":3,"bogus":"x"}`)))
	assert.Equal(t, 1, p.Len())
}
