package utils

import (
	"Marketplace-Cart/domain"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

func InitValidator() {
	Validate = NewValidator()
}

// NewValidator returns a validator that reports json field names and knows the
// cart-specific tags: finite (no NaN or Inf) and isodate (parses as a cart timestamp).
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0)
		default:
			return true
		}
	})

	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}
		_, err := domain.ParseCartTimestamp(fl.Field().String())
		return err == nil
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		item := sl.Current().Interface().(domain.CartLineItem)
		if len(item.VariantBreakdown) == 0 && !domain.AllowsEmptyVariants(item.ProductType) {
			sl.ReportError(item.VariantBreakdown, "variantBreakdown", "VariantBreakdown", "variants_required", item.ProductType)
		}
	}, domain.CartLineItem{})

	return v
}
