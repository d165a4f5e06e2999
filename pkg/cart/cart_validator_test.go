package cart

import (
	"Marketplace-Cart/domain"
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineItemValidator_Violations(t *testing.T) {
	v := NewLineItemValidator(nil)

	tests := []struct {
		name   string
		mutate func(*domain.CartLineItem)
		field  string
		rule   string
	}{
		{"empty id", func(i *domain.CartLineItem) { i.ID = "" }, "id", "required"},
		{"empty product name", func(i *domain.CartLineItem) { i.ProductName = "" }, "productName", "required"},
		{"empty currency", func(i *domain.CartLineItem) { i.Currency = "" }, "currency", "required"},
		{"NaN unit price", func(i *domain.CartLineItem) { i.UnitPrice = math.NaN() }, "unitPrice", "finite"},
		{"infinite total price", func(i *domain.CartLineItem) { i.TotalPrice = math.Inf(1) }, "totalPrice", "finite"},
		{"NaN quantity", func(i *domain.CartLineItem) { i.TotalQuantity = math.NaN() }, "totalQuantity", "finite"},
		{"NaN meters", func(i *domain.CartLineItem) { i.TotalMeters = math.NaN() }, "totalMeters", "finite"},
		{"unparsable addedAt", func(i *domain.CartLineItem) { i.AddedAt = "yesterday" }, "addedAt", "isodate"},
		{"missing addedAt", func(i *domain.CartLineItem) { i.AddedAt = "" }, "addedAt", "required"},
		{"unparsable expiryDate", func(i *domain.CartLineItem) { i.ExpiryDate = "31/12/2026" }, "expiryDate", "isodate"},
		{"textile without variants", func(i *domain.CartLineItem) { i.VariantBreakdown = []domain.VariantDetail{} }, "variantBreakdown", "variants_required"},
		{"untyped without variants", func(i *domain.CartLineItem) {
			i.ProductType = ""
			i.VariantBreakdown = nil
		}, "variantBreakdown", "variants_required"},
		{"extension type without variants", func(i *domain.CartLineItem) {
			i.ProductType = "car_rental"
			i.VariantBreakdown = nil
		}, "variantBreakdown", "variants_required"},
		{"zero variant quantity", func(i *domain.CartLineItem) { i.VariantBreakdown[0].Quantity = 0 }, "variantBreakdown[0].quantity", "gt"},
		{"negative variant length", func(i *domain.CartLineItem) { i.VariantBreakdown[0].Length = -1 }, "variantBreakdown[0].length", "gt"},
		{"empty variant key", func(i *domain.CartLineItem) { i.VariantBreakdown[0].VariantKey = "" }, "variantBreakdown[0].variantKey", "required"},
		{"empty variant label", func(i *domain.CartLineItem) { i.VariantBreakdown[0].Label = "" }, "variantBreakdown[0].label", "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := textileItem("textile_1_1", testNow)
			tt.mutate(&item)

			assert.False(t, v.IsValid(item))
			violations := v.Violations(item)
			assert.Contains(t, violations, domain.Violation{Field: tt.field, Rule: tt.rule, Param: paramOf(violations, tt.field, tt.rule)})
		})
	}
}

func paramOf(violations []domain.Violation, field, rule string) string {
	for _, v := range violations {
		if v.Field == field && v.Rule == rule {
			return v.Param
		}
	}
	return ""
}

func TestLineItemValidator_AcceptsValidItems(t *testing.T) {
	v := NewLineItemValidator(nil)

	assert.True(t, v.IsValid(textileItem("textile_1_1", testNow)))
	for _, productType := range []string{domain.ProductTypeMedication, domain.ProductTypeFood, domain.ProductTypeGrocery, domain.ProductTypeFurniture} {
		item := plainItem(productType+"_1_1", productType, testNow)
		assert.True(t, v.IsValid(item), productType)
	}

	item := plainItem("medication_1_1", domain.ProductTypeMedication, testNow)
	item.AddedAt = "2026-03-01"
	item.ExpiryDate = "2027-01-01T00:00:00"
	assert.True(t, v.IsValid(item), "date-only and zone-less timestamps are accepted")
}

func TestLineItemValidator_CheckReportsEveryViolation(t *testing.T) {
	v := NewLineItemValidator(nil)
	item := textileItem("textile_1_1", testNow)
	item.ProductName = ""
	item.UnitPrice = math.NaN()
	item.VariantBreakdown = nil

	err := v.Check(item)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidItem)

	var invalid *domain.InvalidItemError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "textile_1_1", invalid.ItemID)
	assert.Len(t, invalid.Violations, 3)
	assert.Contains(t, err.Error(), "productName:required")

	assert.NoError(t, v.Check(textileItem("textile_1_1", testNow)))
}

type itemMutation struct {
	name  string
	apply func(*domain.CartLineItem)
}

var singleViolations = []itemMutation{
	{"empty id", func(i *domain.CartLineItem) { i.ID = "" }},
	{"empty name", func(i *domain.CartLineItem) { i.ProductName = "" }},
	{"empty currency", func(i *domain.CartLineItem) { i.Currency = "" }},
	{"NaN price", func(i *domain.CartLineItem) { i.UnitPrice = math.NaN() }},
	{"NaN total", func(i *domain.CartLineItem) { i.TotalPrice = math.NaN() }},
	{"bad addedAt", func(i *domain.CartLineItem) { i.AddedAt = "not a date" }},
	{"bad expiryDate", func(i *domain.CartLineItem) { i.ExpiryDate = "soon" }},
	{"textile without variants", func(i *domain.CartLineItem) {
		i.ProductType = domain.ProductTypeTextile
		i.VariantBreakdown = []domain.VariantDetail{}
	}},
	{"non-positive variant quantity", func(i *domain.CartLineItem) {
		i.VariantBreakdown = []domain.VariantDetail{{VariantKey: "red", Label: "Red", Quantity: 0, Length: 1}}
	}},
}

func TestLineItemValidator_Totality(t *testing.T) {
	v := NewLineItemValidator(nil)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	productTypes := []interface{}{
		domain.ProductTypeTextile, domain.ProductTypeMedication, domain.ProductTypeFood,
		domain.ProductTypeGrocery, domain.ProductTypeFurniture, "",
	}

	build := func(id, name string, price, qty float64, productType string) domain.CartLineItem {
		item := domain.CartLineItem{
			ID:            id,
			ProductName:   name,
			UnitPrice:     price,
			Currency:      "IDR",
			TotalPrice:    price * qty,
			TotalQuantity: qty,
			TotalMeters:   qty,
			AddedAt:       domain.FormatCartTimestamp(testNow),
			ProductType:   productType,
			VariantBreakdown: []domain.VariantDetail{
				{VariantKey: "v1", Label: "V1", Quantity: qty, Length: 1},
			},
		}
		if domain.AllowsEmptyVariants(productType) {
			item.VariantBreakdown = []domain.VariantDetail{}
		}
		return item
	}

	properties.Property("well-formed items are valid", prop.ForAll(
		func(id, name string, price, qty float64, productType string) bool {
			return v.IsValid(build(id, name, price, qty, productType))
		},
		gen.Identifier(), gen.Identifier(),
		gen.Float64Range(0, 1e7), gen.Float64Range(0.5, 1e3),
		gen.OneConstOf(productTypes...),
	))

	properties.Property("any single violation makes an item invalid", prop.ForAll(
		func(id, name string, price, qty float64, productType string, which int) bool {
			item := build(id, name, price, qty, productType)
			singleViolations[which].apply(&item)
			return !v.IsValid(item) && len(v.Violations(item)) > 0
		},
		gen.Identifier(), gen.Identifier(),
		gen.Float64Range(0, 1e7), gen.Float64Range(0.5, 1e3),
		gen.OneConstOf(productTypes...),
		gen.IntRange(0, len(singleViolations)-1),
	))

	properties.TestingRun(t)
}
