package cart

import (
	"Marketplace-Cart/domain"
	"context"
	"errors"
	"time"
)

type (
	CartService interface {
		GetCart(ctx context.Context, identityID string) (domain.CartResponse, error)
		GetOptimizedItems(ctx context.Context, identityID string) ([]domain.OptimizedLineItem, error)
		CountItems(ctx context.Context, identityID string) (domain.CartCountResponse, error)
		AddItem(ctx context.Context, req domain.AddCartItemRequest, identityID string) (domain.CartLineItem, error)
		RemoveItem(ctx context.Context, itemID string, identityID string) error
		ClearCart(ctx context.Context, identityID string) error
	}

	cartService struct {
		manager CartManager
		clock   func() time.Time
	}
)

func NewCartService(manager CartManager) CartService {
	return &cartService{
		manager: manager,
		clock:   time.Now,
	}
}

// withStore runs fn against identityID's store, once more on a fresh store if the first one
// was evicted between For and fn.
func (s *cartService) withStore(ctx context.Context, identityID string, fn func(CartStore) error) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var store CartStore
		store, err = s.manager.For(ctx, identityID)
		if err == nil {
			err = fn(store)
		}
		if !errors.Is(err, domain.ErrStoreClosed) {
			return err
		}
	}
	return err
}

func (s *cartService) GetCart(ctx context.Context, identityID string) (domain.CartResponse, error) {
	var res domain.CartResponse
	err := s.withStore(ctx, identityID, func(store CartStore) error {
		res = domain.CartResponse{
			Identity: identityID,
			Items:    store.Items(),
			Summary:  store.Summary(),
		}
		return nil
	})
	return res, err
}

func (s *cartService) GetOptimizedItems(ctx context.Context, identityID string) ([]domain.OptimizedLineItem, error) {
	var res []domain.OptimizedLineItem
	err := s.withStore(ctx, identityID, func(store CartStore) error {
		res = store.OptimizedItems()
		return nil
	})
	return res, err
}

func (s *cartService) CountItems(ctx context.Context, identityID string) (domain.CartCountResponse, error) {
	var res domain.CartCountResponse
	err := s.withStore(ctx, identityID, func(store CartStore) error {
		res.Count = store.Count()
		return nil
	})
	return res, err
}

func (s *cartService) AddItem(ctx context.Context, req domain.AddCartItemRequest, identityID string) (domain.CartLineItem, error) {
	item := s.lineItemFromRequest(req)

	var saved domain.CartLineItem
	err := s.withStore(ctx, identityID, func(store CartStore) error {
		var err error
		if req.Accumulate {
			err = store.Accumulate(ctx, item)
		} else {
			err = store.AddOrMerge(ctx, item)
		}
		if err != nil {
			return err
		}

		var ok bool
		if saved, ok = store.Get(item.ID); !ok {
			saved = item
		}
		return nil
	})
	if err != nil {
		return domain.CartLineItem{}, err
	}
	return saved, nil
}

func (s *cartService) RemoveItem(ctx context.Context, itemID string, identityID string) error {
	return s.withStore(ctx, identityID, func(store CartStore) error {
		return store.RemoveByID(ctx, itemID)
	})
}

func (s *cartService) ClearCart(ctx context.Context, identityID string) error {
	return s.withStore(ctx, identityID, func(store CartStore) error {
		return store.Clear(ctx)
	})
}

func (s *cartService) lineItemFromRequest(req domain.AddCartItemRequest) domain.CartLineItem {
	now := s.clock()
	id := req.ID
	if id == "" {
		id = domain.NewLineItemID(req.ProductType, req.ProductID, now)
	}
	variants := req.VariantBreakdown
	if variants == nil {
		variants = []domain.VariantDetail{}
	}
	return domain.CartLineItem{
		ID:               id,
		ProductName:      req.ProductName,
		UnitPrice:        req.UnitPrice,
		Currency:         req.Currency,
		TotalPrice:       req.TotalPrice,
		TotalQuantity:    req.TotalQuantity,
		TotalMeters:      req.TotalMeters,
		VariantBreakdown: variants,
		Notes:            req.Notes,
		AddedAt:          domain.FormatCartTimestamp(now),
		ProductType:      req.ProductType,
		Image:            req.Image,
		Category:         req.Category,
		Brand:            req.Brand,
		Weight:           req.Weight,
		Dimensions:       req.Dimensions,
		ExpiryDate:       req.ExpiryDate,
		ServingSize:      req.ServingSize,
	}
}
