package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryClient_PurchaseAddsToCurrentSet(t *testing.T) {
	c := NewInMemoryClient()
	ctx := context.Background()

	raw, err := c.Purchase(ctx, "pro.monthly")
	require.NoError(t, err)
	assert.Equal(t, "pro.monthly", raw.ProductID)
	assert.NotEmpty(t, raw.TransactionID)
	assert.NotEmpty(t, raw.Proof)

	set, err := c.CurrentEntitlements(ctx)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, raw.TransactionID, set[0].TransactionID)
}

func TestInMemoryClient_PublishDeliversToSubscribers(t *testing.T) {
	c := NewInMemoryClient()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, err := c.TransactionUpdates(ctx)
	require.NoError(t, err)

	raw := models.RawTransaction{TransactionID: "t1", ProductID: "p"}
	c.Publish(raw)

	select {
	case got := <-updates:
		assert.Equal(t, "t1", got.TransactionID)
	case <-time.After(time.Second):
		t.Fatal("no update delivered")
	}
}

func TestInMemoryClient_CancelClosesStream(t *testing.T) {
	c := NewInMemoryClient()
	ctx, cancel := context.WithCancel(context.Background())

	updates, err := c.TransactionUpdates(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-updates:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream not closed after cancellation")
	}

	// publishing after cancellation must not panic
	c.Publish(models.RawTransaction{TransactionID: "t2"})
}

func TestInMemoryClient_CurrentEntitlementsReturnsCopy(t *testing.T) {
	c := NewInMemoryClient()
	ctx := context.Background()

	_, err := c.Purchase(ctx, "a")
	require.NoError(t, err)

	set, err := c.CurrentEntitlements(ctx)
	require.NoError(t, err)
	set[0].ProductID = "mutated"

	again, err := c.CurrentEntitlements(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again[0].ProductID)
}
