// Package mode holds the single active operating mode of the client and
// dispatch metadata for it.
package mode

// Kind discriminates the operating-mode variant. Switches over Kind should
// enumerate every constant so adding a mode is a compile-visible change, not
// a silently skipped branch.
type Kind int

const (
	// KindLocal resolves entitlements from the platform store's own
	// transaction set, with no remote authority involved.
	KindLocal Kind = iota + 1
	// KindRemote treats a remote service as the authoritative source of
	// entitlement truth.
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// OperatingMode is a tagged variant: Kind selects which fields are
// meaningful. AppUserID is common to both variants; Endpoint, APIKey and
// CatalogID only apply to KindRemote.
type OperatingMode struct {
	Kind      Kind
	AppUserID string

	Endpoint  string
	APIKey    string
	CatalogID string
}

// Local builds a local-only mode for the given user.
func Local(appUserID string) OperatingMode {
	return OperatingMode{Kind: KindLocal, AppUserID: appUserID}
}

// Remote builds a remote-authoritative mode.
func Remote(endpoint, apiKey, appUserID, catalogID string) OperatingMode {
	return OperatingMode{
		Kind:      KindRemote,
		AppUserID: appUserID,
		Endpoint:  endpoint,
		APIKey:    apiKey,
		CatalogID: catalogID,
	}
}
