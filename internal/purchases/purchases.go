// Package purchases defines the contract of the purchase-execution
// collaborator: the layer that talks to the platform store to initiate
// purchases and to observe renewals and revocations arriving outside any
// explicit call.
package purchases

import (
	"context"

	"github.com/dmitrijs2005/subkeeper/internal/models"
)

// Client is implemented per platform store.
//
// Purchase fails with common.ErrPurchaseCancelled when the user backs out,
// or with a *common.PurchaseError (matching common.ErrStoreFailure) when the
// store malfunctions.
//
// TransactionUpdates returns a channel that delivers asynchronous
// transaction updates for the lifetime of ctx; it never terminates on its
// own. Implementations close the channel once ctx is cancelled.
type Client interface {
	Purchase(ctx context.Context, productID string) (models.RawTransaction, error)
	CurrentEntitlements(ctx context.Context) ([]models.RawTransaction, error)
	TransactionUpdates(ctx context.Context) (<-chan models.RawTransaction, error)
}
