package cli

import (
	"context"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/models"
)

func (a *App) printUpdate(s *models.CustomerState) {
	_, _ = printlnFn("state updated:", len(s.Entitlements), "active entitlement(s)")
}

func (a *App) info(ctx context.Context) {
	s, err := a.engine.GetCustomerInfo(ctx)
	if err != nil {
		_, _ = printlnFn("Error:", err)
		return
	}
	_, _ = printlnFn("App user id:", s.AppUserID)
	_, _ = printlnFn("First seen:", s.FirstSeenAt.Format(time.RFC3339))
	if len(s.Entitlements) == 0 {
		_, _ = printlnFn("No active entitlements")
		return
	}
	for id, ent := range s.Entitlements {
		exp := "never"
		if ent.ExpirationDate != nil {
			exp = ent.ExpirationDate.Format(time.RFC3339)
		}
		_, _ = printlnFn(" -", id, "product:", ent.ProductID, "expires:", exp, "renews:", ent.WillRenew)
	}
}

func (a *App) refresh(ctx context.Context) {
	s, err := a.engine.Refresh(ctx)
	if err != nil {
		_, _ = printlnFn("Error:", err)
		return
	}
	_, _ = printlnFn("Refreshed:", len(s.Entitlements), "active entitlement(s)")
}

func (a *App) purchase(ctx context.Context, args []string) {
	if len(args) != 1 {
		_, _ = printlnFn("Usage: purchase <product>")
		return
	}
	rec, err := a.engine.Purchase(ctx, args[0])
	if err != nil {
		_, _ = printlnFn("Error:", err)
		return
	}
	_, _ = printlnFn("Purchased:", rec.ProductID, "transaction:", rec.TransactionID, "status:", string(rec.Status))
}

// revoke simulates an asynchronous revocation arriving from the store's
// update stream.
func (a *App) revoke(args []string) {
	if len(args) != 1 {
		_, _ = printlnFn("Usage: revoke <product>")
		return
	}
	now := time.Now().UTC()
	a.store.Publish(models.RawTransaction{
		ProductID:    args[0],
		Store:        models.StorePromotional,
		PurchaseDate: now,
		RevokedAt:    &now,
	})
	_, _ = printlnFn("Revocation published for", args[0])
}

func (a *App) entitled(args []string) {
	if len(args) != 1 {
		_, _ = printlnFn("Usage: entitled <id>")
		return
	}
	_, _ = printlnFn(a.engine.IsEntitled(args[0]))
}

func (a *App) clear(ctx context.Context) {
	if err := a.engine.ClearCached(ctx); err != nil {
		_, _ = printlnFn("Error:", err)
		return
	}
	_, _ = printlnFn("Cached snapshot deleted")
}
