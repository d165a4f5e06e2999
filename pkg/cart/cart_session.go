package cart

import (
	"Marketplace-Cart/pkg/identity"
	"context"

	"github.com/gofiber/fiber/v2/log"
)

// BindSession loads store for the provider's current identity and reloads it on every
// identity change until the returned func is called.
func BindSession(ctx context.Context, store CartStore, provider identity.Provider) (unbind func()) {
	if err := store.Reset(ctx, provider.Current()); err != nil {
		log.Warnw("cart load on bind failed", "error", err)
	}
	return provider.Subscribe(func(id string) {
		if err := store.Reset(ctx, id); err != nil {
			log.Warnw("cart reload on identity change failed", "identity", id, "error", err)
		}
	})
}
