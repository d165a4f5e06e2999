package cart

import (
	"Marketplace-Cart/domain"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSnapshot_Shape(t *testing.T) {
	raw, err := encodeSnapshot(nil, testNow)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0","items":[],"lastUpdated":"2026-03-01T12:00:00.000Z"}`, string(raw))

	raw, err = encodeBackup([]domain.CartLineItem{plainItem("food_1_1", domain.ProductTypeFood, testNow)}, testNow)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "1.0", doc["version"])
	assert.Equal(t, "2026-03-01T12:00:00.000Z", doc["timestamp"])
	assert.NotContains(t, doc, "lastUpdated")
	item := doc["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, []interface{}{}, item["variantBreakdown"])
	assert.NotContains(t, item, "notes", "empty optional fields are omitted")
}

func TestDecodeSnapshot(t *testing.T) {
	items := []domain.CartLineItem{textileItem("a", testNow), plainItem("b", domain.ProductTypeFood, testNow)}
	primary, err := encodeSnapshot(items, testNow)
	require.NoError(t, err)
	backup, err := encodeBackup(items, testNow)
	require.NoError(t, err)

	for _, raw := range [][]byte{primary, backup} {
		snap, err := decodeSnapshot(string(raw))
		require.NoError(t, err)
		assert.Equal(t, items, snap.Items)
		assert.Zero(t, snap.Rejected)
	}
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":        `{"version":`,
		"not an object":   `"cart"`,
		"missing items":   `{"version":"1.0"}`,
		"items not array": `{"version":"1.0","items":{}}`,
		"wrong version":   `{"version":"0.9","items":[]}`,
		"numeric version": `{"version":1,"items":[]}`,
	} {
		_, err := decodeSnapshot(raw)
		assert.ErrorIs(t, err, domain.ErrCorruptSnapshot, name)
	}
}

func TestDecodeSnapshot_RejectsMalformedItemsOnly(t *testing.T) {
	raw := `{"version":"1.0","items":[
		{"id":"x","productName":"Rice","unitPrice":"12000","currency":"IDR","totalPrice":1,"totalQuantity":1,"totalMeters":1,"variantBreakdown":[],"addedAt":"2026-03-01"},
		{"id":"y","productName":"Rice","unitPrice":12000,"currency":"IDR","totalPrice":1,"totalQuantity":1,"totalMeters":1,"variantBreakdown":[{"variantKey":"5kg"}],"addedAt":"2026-03-01"},
		{"id":"z","productName":"Rice","unitPrice":12000,"currency":"IDR","totalPrice":1,"totalQuantity":1,"totalMeters":1,"variantBreakdown":[],"addedAt":"2026-03-01","productType":"grocery"},
		null
	]}`

	snap, err := decodeSnapshot(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, ids(snap.Items))
	assert.Equal(t, 3, snap.Rejected)
}
