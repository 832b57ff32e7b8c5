package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time { return &t }

func TestEntitlementRecord_GrantedAt(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ent  EntitlementRecord
		want bool
	}{
		{"active without expiration", EntitlementRecord{IsActive: true}, true},
		{"active, expires in the future", EntitlementRecord{IsActive: true, ExpirationDate: ptr(now.Add(time.Hour))}, true},
		{"active, expired", EntitlementRecord{IsActive: true, ExpirationDate: ptr(now.Add(-time.Hour))}, false},
		{"active, expires exactly now", EntitlementRecord{IsActive: true, ExpirationDate: ptr(now)}, false},
		{"inactive without expiration", EntitlementRecord{IsActive: false}, false},
		{"inactive with future expiration", EntitlementRecord{IsActive: false, ExpirationDate: ptr(now.Add(time.Hour))}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ent.GrantedAt(now))
		})
	}
}

func TestCustomerState_WireSchema(t *testing.T) {
	doc := `{
		"app_user_id": "u1",
		"active_entitlements": {
			"pro": {
				"id": "pro",
				"is_active": true,
				"expiration_date": "2026-09-01T00:00:00Z",
				"product_id": "pro.monthly",
				"store": "app_store",
				"will_renew": true,
				"purchase_date": "2026-08-01T00:00:00Z"
			}
		},
		"all_transactions": [
			{
				"transaction_id": "t1",
				"product_id": "pro.monthly",
				"purchase_date": "2026-08-01T00:00:00Z",
				"expiration_date": "2026-09-01T00:00:00Z",
				"status": "active"
			}
		],
		"first_seen_at": "2026-08-01T00:00:00Z"
	}`

	var s CustomerState
	require.NoError(t, json.Unmarshal([]byte(doc), &s))

	assert.Equal(t, "u1", s.AppUserID)
	require.Contains(t, s.Entitlements, "pro")

	ent := s.Entitlements["pro"]
	assert.Equal(t, "pro", ent.ID)
	assert.True(t, ent.IsActive)
	assert.True(t, ent.WillRenew)
	assert.Equal(t, StoreAppStore, ent.Store)
	require.NotNil(t, ent.ExpirationDate)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), ent.ExpirationDate.UTC())

	require.Len(t, s.AllTransactions, 1)
	assert.Equal(t, StatusActive, s.AllTransactions[0].Status)
	assert.Equal(t, "t1", s.AllTransactions[0].TransactionID)
}

func TestCustomerState_Clone(t *testing.T) {
	exp := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	s := &CustomerState{
		AppUserID: "u1",
		Entitlements: map[string]EntitlementRecord{
			"pro": {ID: "pro", IsActive: true, ExpirationDate: &exp},
		},
		AllTransactions: []TransactionRecord{{TransactionID: "t1", Status: StatusActive}},
		FirstSeenAt:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}

	c := s.Clone()
	require.Equal(t, s, c)

	// mutating the copy must not leak into the original
	c.Entitlements["extra"] = EntitlementRecord{ID: "extra"}
	c.AllTransactions[0].Status = StatusRefunded

	assert.NotContains(t, s.Entitlements, "extra")
	assert.Equal(t, StatusActive, s.AllTransactions[0].Status)
}

func TestCustomerState_Clone_Nil(t *testing.T) {
	var s *CustomerState
	assert.Nil(t, s.Clone())
}
