package cart

import (
	"Marketplace-Cart/domain"
	"encoding/json"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchema covers both the primary ({lastUpdated}) and backup ({timestamp}) shapes.
var envelopeSchema = jsonschema.MustCompileString("cart_snapshot.json", `{
	"type": "object",
	"required": ["version", "items"],
	"properties": {
		"version": {"type": "string"},
		"items": {"type": "array"},
		"lastUpdated": {"type": "string"},
		"timestamp": {"type": "string"}
	}
}`)

// lineItemSchema rejects persisted items with missing or mistyped fields before they are
// decoded, so a missing price is not silently read as zero.
var lineItemSchema = jsonschema.MustCompileString("cart_line_item.json", `{
	"type": "object",
	"required": ["id", "productName", "unitPrice", "currency", "totalPrice", "totalQuantity", "totalMeters", "variantBreakdown", "addedAt"],
	"properties": {
		"id": {"type": "string"},
		"productName": {"type": "string"},
		"unitPrice": {"type": "number"},
		"currency": {"type": "string"},
		"totalPrice": {"type": "number"},
		"totalQuantity": {"type": "number"},
		"totalMeters": {"type": "number"},
		"variantBreakdown": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["variantKey", "label", "quantity", "length"],
				"properties": {
					"variantKey": {"type": "string"},
					"label": {"type": "string"},
					"quantity": {"type": "number"},
					"length": {"type": "number"}
				}
			}
		},
		"notes": {"type": "string"},
		"addedAt": {"type": "string"},
		"productType": {"type": "string"},
		"image": {"type": "string"},
		"category": {"type": "string"},
		"brand": {"type": "string"},
		"weight": {"type": "string"},
		"dimensions": {"type": "string"},
		"expiryDate": {"type": "string"},
		"servingSize": {"type": "string"}
	}
}`)

type decodedSnapshot struct {
	Items []domain.CartLineItem
	// Rejected counts items that were not decodable line items at all.
	Rejected int
}

type rawSnapshot struct {
	Version string            `json:"version"`
	Items   []json.RawMessage `json:"items"`
}

// decodeSnapshot parses a primary or backup envelope. Any error wraps domain.ErrCorruptSnapshot.
func decodeSnapshot(raw string) (decodedSnapshot, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return decodedSnapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	if err := envelopeSchema.Validate(doc); err != nil {
		return decodedSnapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}

	var snap rawSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return decodedSnapshot{}, fmt.Errorf("%w: %v", domain.ErrCorruptSnapshot, err)
	}
	if snap.Version != domain.CartSchemaVersion {
		return decodedSnapshot{}, fmt.Errorf("%w: version %q, want %q", domain.ErrCorruptSnapshot, snap.Version, domain.CartSchemaVersion)
	}

	out := decodedSnapshot{Items: make([]domain.CartLineItem, 0, len(snap.Items))}
	for _, rawItem := range snap.Items {
		item, ok := decodeLineItem(rawItem)
		if !ok {
			out.Rejected++
			continue
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func decodeLineItem(raw json.RawMessage) (domain.CartLineItem, bool) {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.CartLineItem{}, false
	}
	if err := lineItemSchema.Validate(doc); err != nil {
		return domain.CartLineItem{}, false
	}
	var item domain.CartLineItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.CartLineItem{}, false
	}
	return item, true
}

func encodeSnapshot(items []domain.CartLineItem, now time.Time) ([]byte, error) {
	return json.Marshal(domain.CartSnapshot{
		Version:     domain.CartSchemaVersion,
		Items:       nonNil(items),
		LastUpdated: domain.FormatCartTimestamp(now),
	})
}

func encodeBackup(items []domain.CartLineItem, now time.Time) ([]byte, error) {
	return json.Marshal(domain.CartBackupSnapshot{
		Version:   domain.CartSchemaVersion,
		Items:     nonNil(items),
		Timestamp: domain.FormatCartTimestamp(now),
	})
}

func nonNil(items []domain.CartLineItem) []domain.CartLineItem {
	if items == nil {
		return []domain.CartLineItem{}
	}
	return items
}
