package cart

import (
	"Marketplace-Cart/domain"
	"Marketplace-Cart/internal/utils"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// LineItemValidator checks line items against the cart invariants and reports every
// broken rule, not just the first.
type LineItemValidator struct {
	validate *validator.Validate
}

// NewLineItemValidator wraps v, which must have been built by utils.NewValidator.
// A nil v gets a fresh one.
func NewLineItemValidator(v *validator.Validate) *LineItemValidator {
	if v == nil {
		v = utils.NewValidator()
	}
	return &LineItemValidator{validate: v}
}

func (v *LineItemValidator) Violations(item domain.CartLineItem) []domain.Violation {
	err := v.validate.Struct(item)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []domain.Violation{{Field: "", Rule: "invalid"}}
	}

	violations := make([]domain.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, domain.Violation{
			Field: fieldPath(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return violations
}

func (v *LineItemValidator) IsValid(item domain.CartLineItem) bool {
	return v.validate.Struct(item) == nil
}

// Check returns a *domain.InvalidItemError when item breaks any invariant.
func (v *LineItemValidator) Check(item domain.CartLineItem) error {
	violations := v.Violations(item)
	if len(violations) == 0 {
		return nil
	}
	return &domain.InvalidItemError{ItemID: item.ID, Violations: violations}
}

// fieldPath drops the leading struct name: "CartLineItem.variantBreakdown[0].label" -> "variantBreakdown[0].label".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
