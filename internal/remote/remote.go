// Package remote talks to the authoritative subscription service. It is a
// pure transport: both operations are stateless network round trips that
// never read or write the local cache — fallback-to-cache on failure is the
// synchronization engine's job.
package remote

import (
	"context"

	"github.com/dmitrijs2005/subkeeper/internal/models"
)

// Client wraps the two idempotent operations of the remote authority.
//
// Both return a *common.NetworkError (matching common.ErrNetwork) on a
// non-success response or a transport fault, and a *common.ProtocolError
// (matching common.ErrProtocol) when a success response fails to parse or
// validate against the customer-state schema. Submission is at-least-once;
// the server deduplicates by transaction proof.
type Client interface {
	SubmitTransaction(ctx context.Context, appUserID, productID string, proof []byte) (*models.CustomerState, error)
	FetchState(ctx context.Context, appUserID string) (*models.CustomerState, error)
}
