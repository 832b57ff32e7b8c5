package normalize

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  models.RawTransaction
		want models.TransactionStatus
	}{
		{"no expiration, no revocation", models.RawTransaction{}, models.StatusActive},
		{"future expiration", models.RawTransaction{ExpirationDate: ptr(now.Add(time.Hour))}, models.StatusActive},
		{"past expiration", models.RawTransaction{ExpirationDate: ptr(now.Add(-time.Hour))}, models.StatusExpired},
		{"expiration exactly now", models.RawTransaction{ExpirationDate: ptr(now)}, models.StatusExpired},
		{"revoked", models.RawTransaction{RevokedAt: ptr(now.Add(-time.Minute))}, models.StatusRefunded},
		{"revoked wins over future expiration", models.RawTransaction{RevokedAt: ptr(now), ExpirationDate: ptr(now.Add(time.Hour))}, models.StatusRefunded},
		{"grace period with past expiration", models.RawTransaction{InGracePeriod: true, ExpirationDate: ptr(now.Add(-time.Hour))}, models.StatusGracePeriod},
		{"billing retry with past expiration", models.RawTransaction{InBillingRetry: true, ExpirationDate: ptr(now.Add(-time.Hour))}, models.StatusBillingRetry},
		{"revoked wins over grace period", models.RawTransaction{RevokedAt: ptr(now), InGracePeriod: true}, models.StatusRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.raw, now))
		})
	}
}

func TestRecord(t *testing.T) {
	exp := now.Add(time.Hour)
	raw := models.RawTransaction{
		TransactionID:  "t1",
		ProductID:      "pro.monthly",
		PurchaseDate:   now.Add(-24 * time.Hour),
		ExpirationDate: &exp,
	}

	rec := Record(raw, now)

	assert.Equal(t, "t1", rec.TransactionID)
	assert.Equal(t, "pro.monthly", rec.ProductID)
	assert.Equal(t, models.StatusActive, rec.Status)
	assert.Equal(t, raw.PurchaseDate, rec.PurchaseDate)
	assert.Equal(t, &exp, rec.ExpirationDate)
}

func TestEntitlements_GrantAndRevoke(t *testing.T) {
	purchase := models.RawTransaction{
		TransactionID: "t1",
		ProductID:     "pro.monthly",
		Store:         models.StoreAppStore,
		PurchaseDate:  now.Add(-time.Hour),
	}

	ents := Entitlements([]models.RawTransaction{purchase}, now)
	require.Contains(t, ents, "pro.monthly")
	assert.True(t, ents["pro.monthly"].IsActive)
	// no expiration means no renewal either
	assert.False(t, ents["pro.monthly"].WillRenew)

	// a later revocation for the same product removes the grant
	revoked := purchase
	revoked.TransactionID = "t2"
	revoked.RevokedAt = ptr(now.Add(-time.Minute))

	ents = Entitlements([]models.RawTransaction{purchase, revoked}, now)
	assert.NotContains(t, ents, "pro.monthly")
}

func TestEntitlements_WillRenew(t *testing.T) {
	exp := now.Add(30 * 24 * time.Hour)
	renewing := models.RawTransaction{
		TransactionID:  "t1",
		ProductID:      "pro.monthly",
		PurchaseDate:   now.Add(-time.Hour),
		ExpirationDate: &exp,
	}

	ents := Entitlements([]models.RawTransaction{renewing}, now)
	require.Contains(t, ents, "pro.monthly")
	assert.True(t, ents["pro.monthly"].WillRenew)
}

func TestEntitlements_GracePeriodAndBillingRetryGrant(t *testing.T) {
	pastExp := now.Add(-time.Hour)
	raws := []models.RawTransaction{
		{TransactionID: "t1", ProductID: "a", InGracePeriod: true, ExpirationDate: &pastExp},
		{TransactionID: "t2", ProductID: "b", InBillingRetry: true, ExpirationDate: &pastExp},
		{TransactionID: "t3", ProductID: "c", ExpirationDate: &pastExp},
	}

	ents := Entitlements(raws, now)

	assert.Contains(t, ents, "a")
	assert.Contains(t, ents, "b")
	assert.NotContains(t, ents, "c")
}

func TestEntitlements_LastWriteWinsByProcessingOrder(t *testing.T) {
	// the later slice element wins even though it was purchased earlier;
	// the sequence is intentionally not re-sorted by purchase date
	newer := models.RawTransaction{
		TransactionID: "t-new",
		ProductID:     "pro.monthly",
		Store:         models.StoreAppStore,
		PurchaseDate:  now.Add(-time.Hour),
	}
	older := models.RawTransaction{
		TransactionID: "t-old",
		ProductID:     "pro.monthly",
		Store:         models.StorePlayStore,
		PurchaseDate:  now.Add(-48 * time.Hour),
	}

	ents := Entitlements([]models.RawTransaction{newer, older}, now)
	require.Contains(t, ents, "pro.monthly")
	assert.Equal(t, models.StorePlayStore, ents["pro.monthly"].Store)
	assert.Equal(t, older.PurchaseDate, ents["pro.monthly"].PurchaseDate)
}

func TestEntitlements_Deterministic(t *testing.T) {
	exp := now.Add(time.Hour)
	raws := []models.RawTransaction{
		{TransactionID: "t1", ProductID: "a", PurchaseDate: now.Add(-time.Hour)},
		{TransactionID: "t2", ProductID: "b", ExpirationDate: &exp, PurchaseDate: now.Add(-time.Minute)},
		{TransactionID: "t3", ProductID: "a", RevokedAt: ptr(now)},
	}

	first := Entitlements(raws, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Entitlements(raws, now))
	}
}
