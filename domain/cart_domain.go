package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	MessageSuccessGetCart       = "cart retrieved successfully"
	MessageSuccessGetCartCount  = "cart count retrieved successfully"
	MessageSuccessAddCartItem   = "item added to cart successfully"
	MessageSuccessRemoveItem    = "item removed from cart successfully"
	MessageSuccessClearCart     = "cart cleared successfully"
	MessageSuccessGetCartLayout = "cart items retrieved successfully"

	MessageFailedGetCart     = "failed to retrieve cart"
	MessageFailedAddCartItem = "failed to add item to cart"
	MessageFailedRemoveItem  = "failed to remove item from cart"
	MessageFailedClearCart   = "failed to clear cart"
	MessageFailedCartQuota   = "cart is too large, remove some items and try again"
	MessageFailedCartStorage = "cart storage is unavailable, please try again"
	MessageFailedBodyRequest = "failed to parse request body"

	ErrInvalidItem          = errors.New("invalid cart item")
	ErrStorageQuotaExceeded = errors.New("cart storage quota exceeded")
	ErrPersistenceIO        = errors.New("cart persistence failed")
	ErrCorruptSnapshot      = errors.New("corrupt cart snapshot")
	ErrInvalidIdentity      = errors.New("cart identity must not contain " + CartKeySeparator)
	ErrStoreClosed          = errors.New("cart store closed")
)

const (
	CartSchemaVersion   = "1.0"
	CartRetentionWindow = 30 * 24 * time.Hour
	CartMaxSnapshotSize = 5 * 1024 * 1024
	DefaultCartKey      = "cart_items"

	// CartKeySeparator never appears in a primary key, so backup keys cannot collide with one.
	CartKeySeparator = ":"
	CartBackupSuffix = CartKeySeparator + "temp"

	ProductTypeTextile    = "textile"
	ProductTypeMedication = "medication"
	ProductTypeFood       = "food"
	ProductTypeGrocery    = "grocery"
	ProductTypeFurniture  = "furniture"
)

// CartTimestampLayouts are the accepted formats for addedAt and expiryDate.
var CartTimestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

type (
	// VariantDetail is one chosen variant of a line, e.g. a colour and cut length for textiles.
	VariantDetail struct {
		VariantKey string  `json:"variantKey" validate:"required"`
		Label      string  `json:"label" validate:"required"`
		Quantity   float64 `json:"quantity" validate:"finite,gt=0"`
		Length     float64 `json:"length" validate:"finite,gt=0"`
	}

	// CartLineItem is one purchasable line in the cart. Totals are owned by the caller and
	// are never recomputed from UnitPrice.
	CartLineItem struct {
		ID               string          `json:"id" validate:"required"`
		ProductName      string          `json:"productName" validate:"required"`
		UnitPrice        float64         `json:"unitPrice" validate:"finite"`
		Currency         string          `json:"currency" validate:"required"`
		TotalPrice       float64         `json:"totalPrice" validate:"finite"`
		TotalQuantity    float64         `json:"totalQuantity" validate:"finite"`
		TotalMeters      float64         `json:"totalMeters" validate:"finite"`
		VariantBreakdown []VariantDetail `json:"variantBreakdown" validate:"dive"`
		Notes            string          `json:"notes,omitempty"`
		AddedAt          string          `json:"addedAt" validate:"required,isodate"`
		ProductType      string          `json:"productType,omitempty"`
		Image            string          `json:"image,omitempty"`
		Category         string          `json:"category,omitempty"`
		Brand            string          `json:"brand,omitempty"`
		Weight           string          `json:"weight,omitempty"`
		Dimensions       string          `json:"dimensions,omitempty"`
		ExpiryDate       string          `json:"expiryDate,omitempty" validate:"omitempty,isodate"`
		ServingSize      string          `json:"servingSize,omitempty"`
	}

	// OptimizedLineItem is the reduced view handed to list renderers.
	OptimizedLineItem struct {
		ID            string  `json:"id"`
		ProductName   string  `json:"productName"`
		TotalPrice    float64 `json:"totalPrice"`
		TotalQuantity float64 `json:"totalQuantity"`
		Currency      string  `json:"currency"`
		ProductType   string  `json:"productType,omitempty"`
		Image         string  `json:"image,omitempty"`
		Category      string  `json:"category,omitempty"`
		Brand         string  `json:"brand,omitempty"`
	}

	CartSnapshot struct {
		Version     string         `json:"version"`
		Items       []CartLineItem `json:"items"`
		LastUpdated string         `json:"lastUpdated"`
	}

	CartBackupSnapshot struct {
		Version   string         `json:"version"`
		Items     []CartLineItem `json:"items"`
		Timestamp string         `json:"timestamp"`
	}

	CartSummary struct {
		ItemCount     int                `json:"item_count"`
		TotalQuantity float64            `json:"total_quantity"`
		Totals        map[string]float64 `json:"totals"`
	}

	// Violation names one broken invariant of a line item.
	Violation struct {
		Field string `json:"field"`
		Rule  string `json:"rule"`
		Param string `json:"param,omitempty"`
	}

	InvalidItemError struct {
		ItemID     string
		Violations []Violation
	}

	AddCartItemRequest struct {
		ID               string          `json:"id"`
		ProductID        string          `json:"product_id" validate:"required_without=ID"`
		ProductName      string          `json:"product_name" validate:"required"`
		UnitPrice        float64         `json:"unit_price" validate:"min=0"`
		Currency         string          `json:"currency" validate:"required"`
		TotalPrice       float64         `json:"total_price" validate:"min=0"`
		TotalQuantity    float64         `json:"total_quantity" validate:"gt=0"`
		TotalMeters      float64         `json:"total_meters" validate:"min=0"`
		VariantBreakdown []VariantDetail `json:"variant_breakdown" validate:"dive"`
		Notes            string          `json:"notes"`
		ProductType      string          `json:"product_type"`
		Image            string          `json:"image"`
		Category         string          `json:"category"`
		Brand            string          `json:"brand"`
		Weight           string          `json:"weight"`
		Dimensions       string          `json:"dimensions"`
		ExpiryDate       string          `json:"expiry_date"`
		ServingSize      string          `json:"serving_size"`
		Accumulate       bool            `json:"accumulate"`
	}

	CartResponse struct {
		Identity string         `json:"identity,omitempty"`
		Items    []CartLineItem `json:"items"`
		Summary  CartSummary    `json:"summary"`
	}

	CartCountResponse struct {
		Count int `json:"count"`
	}
)

func (e *InvalidItemError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Param != "" {
			parts = append(parts, fmt.Sprintf("%s:%s=%s", v.Field, v.Rule, v.Param))
			continue
		}
		parts = append(parts, v.Field+":"+v.Rule)
	}
	if e.ItemID == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidItem, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("%s %q: %s", ErrInvalidItem, e.ItemID, strings.Join(parts, ", "))
}

func (e *InvalidItemError) Unwrap() error {
	return ErrInvalidItem
}

// AllowsEmptyVariants reports whether a product type may carry an empty variant breakdown.
func AllowsEmptyVariants(productType string) bool {
	switch productType {
	case ProductTypeMedication, ProductTypeFood, ProductTypeGrocery, ProductTypeFurniture:
		return true
	default:
		return false
	}
}

// ParseCartTimestamp parses addedAt / expiryDate values.
func ParseCartTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range CartTimestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func FormatCartTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// NewLineItemID builds the conventional "{productType}_{productId}_{millis}" line id.
func NewLineItemID(productType, productID string, at time.Time) string {
	if productType == "" {
		productType = ProductTypeTextile
	}
	return fmt.Sprintf("%s_%s_%d", productType, productID, at.UnixMilli())
}

func (i CartLineItem) Optimized() OptimizedLineItem {
	return OptimizedLineItem{
		ID:            i.ID,
		ProductName:   i.ProductName,
		TotalPrice:    i.TotalPrice,
		TotalQuantity: i.TotalQuantity,
		Currency:      i.Currency,
		ProductType:   i.ProductType,
		Image:         i.Image,
		Category:      i.Category,
		Brand:         i.Brand,
	}
}

// Clone returns a copy that shares no slice storage with i.
func (i CartLineItem) Clone() CartLineItem {
	out := i
	out.VariantBreakdown = make([]VariantDetail, len(i.VariantBreakdown))
	copy(out.VariantBreakdown, i.VariantBreakdown)
	return out
}
