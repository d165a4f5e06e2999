package cart

import "Marketplace-Cart/domain"

// MergeLineItems folds incoming into existing for quantity accumulation: quantities, prices
// and meters are summed, variants with the same key and length have their quantities summed,
// and descriptive fields (name, unit price, image, notes, addedAt...) come from incoming.
func MergeLineItems(existing, incoming domain.CartLineItem) domain.CartLineItem {
	merged := incoming.Clone()
	merged.ID = existing.ID
	merged.TotalQuantity = existing.TotalQuantity + incoming.TotalQuantity
	merged.TotalPrice = existing.TotalPrice + incoming.TotalPrice
	merged.TotalMeters = existing.TotalMeters + incoming.TotalMeters
	merged.VariantBreakdown = mergeVariants(existing.VariantBreakdown, incoming.VariantBreakdown)
	return merged
}

type variantKey struct {
	key    string
	length float64
}

func mergeVariants(existing, incoming []domain.VariantDetail) []domain.VariantDetail {
	out := make([]domain.VariantDetail, 0, len(existing)+len(incoming))
	index := make(map[variantKey]int, len(existing)+len(incoming))

	for _, group := range [][]domain.VariantDetail{existing, incoming} {
		for _, v := range group {
			k := variantKey{key: v.VariantKey, length: v.Length}
			if i, ok := index[k]; ok {
				out[i].Quantity += v.Quantity
				out[i].Label = v.Label
				continue
			}
			index[k] = len(out)
			out = append(out, v)
		}
	}
	return out
}
