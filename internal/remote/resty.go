package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/subkeeper/internal/common"
	"github.com/dmitrijs2005/subkeeper/internal/models"
	"github.com/go-resty/resty/v2"
)

const (
	receiptsPath    = "/v1/receipts"
	subscribersPath = "/v1/subscribers/{app_user_id}"

	maxErrorBody = 512
)

// RestyClient is the HTTP implementation of Client.
type RestyClient struct {
	client    *resty.Client
	catalogID string
}

// NewRestyClient builds a client for the given endpoint. The API key is sent
// as a bearer token on every request. A zero timeout leaves resty's default
// (no timeout); timeouts and retries are this layer's collaborator concerns,
// so nothing beyond the plain client timeout is configured here.
func NewRestyClient(endpoint, apiKey, catalogID string, timeout time.Duration) *RestyClient {
	c := resty.New().
		SetBaseURL(endpoint).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &RestyClient{client: c, catalogID: catalogID}
}

type receiptRequest struct {
	AppUserID string `json:"app_user_id"`
	CatalogID string `json:"catalog_id,omitempty"`
	ProductID string `json:"product_id"`
	Proof     []byte `json:"proof"`
}

// SubmitTransaction posts one transaction proof and returns the server's
// authoritative customer state.
func (c *RestyClient) SubmitTransaction(ctx context.Context, appUserID, productID string, proof []byte) (*models.CustomerState, error) {
	body := receiptRequest{
		AppUserID: appUserID,
		CatalogID: c.catalogID,
		ProductID: productID,
		Proof:     proof,
	}

	resp, err := c.client.R().SetContext(ctx).SetBody(body).Post(receiptsPath)
	if err != nil {
		return nil, &common.NetworkError{Err: err}
	}
	return decodeState(resp, appUserID)
}

// FetchState reads the current customer state for the user.
func (c *RestyClient) FetchState(ctx context.Context, appUserID string) (*models.CustomerState, error) {
	resp, err := c.client.R().SetContext(ctx).
		SetPathParam("app_user_id", appUserID).
		Get(subscribersPath)
	if err != nil {
		return nil, &common.NetworkError{Err: err}
	}
	return decodeState(resp, appUserID)
}

// decodeState classifies the response: non-2xx is a network failure carrying
// the status context, a 2xx body that fails to parse or validate is a
// protocol failure.
func decodeState(resp *resty.Response, appUserID string) (*models.CustomerState, error) {
	if !resp.IsSuccess() {
		return nil, &common.NetworkError{
			StatusCode: resp.StatusCode(),
			Body:       truncate(resp.String(), maxErrorBody),
		}
	}

	var s models.CustomerState
	if err := json.Unmarshal(resp.Body(), &s); err != nil {
		return nil, &common.ProtocolError{Reason: "malformed customer state", Err: err}
	}
	if err := validateState(&s, appUserID); err != nil {
		return nil, &common.ProtocolError{Reason: err.Error()}
	}
	return &s, nil
}

func validateState(s *models.CustomerState, appUserID string) error {
	if s.AppUserID == "" {
		return fmt.Errorf("missing app_user_id")
	}
	if s.AppUserID != appUserID {
		return fmt.Errorf("app_user_id mismatch: got %q, requested %q", s.AppUserID, appUserID)
	}
	for key, ent := range s.Entitlements {
		if ent.ID != key {
			return fmt.Errorf("entitlement key %q does not match record id %q", key, ent.ID)
		}
	}
	if s.Entitlements == nil {
		s.Entitlements = make(map[string]models.EntitlementRecord)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
