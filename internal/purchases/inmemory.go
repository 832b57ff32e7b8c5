package purchases

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/models"
	"github.com/google/uuid"
)

// InMemoryClient is a store client backed by an in-memory transaction set.
// It stands in for a real platform store in the CLI and in tests: Purchase
// synthesizes a signed-looking transaction, and Publish simulates an
// asynchronous update (renewal, revocation) arriving from the store.
type InMemoryClient struct {
	now func() time.Time

	mu           sync.Mutex
	transactions []models.RawTransaction
	subscribers  map[int]chan models.RawTransaction
	nextID       int
}

func NewInMemoryClient() *InMemoryClient {
	return &InMemoryClient{
		now:         time.Now,
		subscribers: make(map[int]chan models.RawTransaction),
	}
}

// Purchase synthesizes a non-expiring transaction for the product and adds
// it to the store's current transaction set.
func (c *InMemoryClient) Purchase(ctx context.Context, productID string) (models.RawTransaction, error) {
	raw := models.RawTransaction{
		TransactionID: uuid.NewString(),
		ProductID:     productID,
		Store:         models.StorePromotional,
		PurchaseDate:  c.now().UTC(),
		Proof:         []byte(uuid.NewString()),
	}

	c.mu.Lock()
	c.transactions = append(c.transactions, raw)
	c.mu.Unlock()

	return raw, nil
}

// CurrentEntitlements returns a copy of the complete current transaction
// set, in the order transactions were recorded.
func (c *InMemoryClient) CurrentEntitlements(ctx context.Context) ([]models.RawTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.RawTransaction, len(c.transactions))
	copy(out, c.transactions)
	return out, nil
}

// TransactionUpdates subscribes to published updates. The returned channel
// is closed once ctx is cancelled.
func (c *InMemoryClient) TransactionUpdates(ctx context.Context) (<-chan models.RawTransaction, error) {
	ch := make(chan models.RawTransaction, 16)

	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subscribers[id] = ch
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		// close under the same lock Publish sends under, so a send on a
		// closed channel cannot happen
		c.mu.Lock()
		delete(c.subscribers, id)
		close(ch)
		c.mu.Unlock()
	}()

	return ch, nil
}

// Publish records an update in the transaction set and delivers it to every
// subscriber. Slow subscribers with a full buffer are skipped rather than
// blocking the store.
func (c *InMemoryClient) Publish(raw models.RawTransaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactions = append(c.transactions, raw)
	for _, ch := range c.subscribers {
		select {
		case ch <- raw:
		default:
		}
	}
}
