// Package types provides common type definitions for the wallet sync library.
package types

import "time"

// Currency represents a supported settlement currency
type Currency string

const (
	// CurrencyUSDT represents the Tether stablecoin
	CurrencyUSDT Currency = "usdt"
	// CurrencyUSDC represents the USD Coin stablecoin
	CurrencyUSDC Currency = "usdc"
)

// Network represents a supported transfer network
type Network string

const (
	// NetworkTRC20 represents the Tron token network
	NetworkTRC20 Network = "trc20"
	// NetworkBEP20 represents the BNB Chain token network
	NetworkBEP20 Network = "bep20"
	// NetworkERC20 represents the Ethereum token network
	NetworkERC20 Network = "erc20"
)

// TierLevel represents a membership tier label
type TierLevel string

const (
	// TierV0 is the implicit zero tier assigned before any advancement
	TierV0 TierLevel = "V0"
	TierV1 TierLevel = "V1"
	TierV2 TierLevel = "V2"
	TierV3 TierLevel = "V3"
	TierV4 TierLevel = "V4"
	TierV5 TierLevel = "V5"
	TierV6 TierLevel = "V6"
)

// TierOrder is the fixed advancement ordering of membership tiers
var TierOrder = []TierLevel{TierV0, TierV1, TierV2, TierV3, TierV4, TierV5, TierV6}

// WalletState is the local optimistic view of a user's wallet.
// Balance and Reserved mirror the remote ledger row and are overwritten
// wholesale on refresh; TotalIncome is a purely local counter with no
// remote twin.
type WalletState struct {
	Balance     float64 `json:"balance"`
	Reserved    float64 `json:"reserved"`
	TotalIncome float64 `json:"totalIncome"`
}

// ReferralEdge records that DescendantID is a Depth-deep referral of the
// current identity. Depth is always in [1, 3].
type ReferralEdge struct {
	DescendantID string `json:"id"`
	Depth        int    `json:"depth"`
}

// TierRule holds the advancement thresholds for a single tier
type TierRule struct {
	MinBalance float64 `json:"minBalance"`
	MinUsers   int     `json:"minUsers"`
}

// MembershipSnapshot is a derived, ephemeral read-model of the user's
// membership standing. It is recomputed on each request and never persisted.
type MembershipSnapshot struct {
	CurrentLevel   TierLevel              `json:"currentLevel"`
	NextLevel      *TierLevel             `json:"nextLevel"`
	IsActivated    bool                   `json:"isActivated"`
	IsFunded       bool                   `json:"isFunded"`
	IsLocked       bool                   `json:"isLocked"`
	Balance        float64                `json:"balance"`
	EffectiveUsers int                    `json:"effectiveUsers"`
	RulesByLevel   map[TierLevel]TierRule `json:"rulesByLevel"`
}

// PayoutAddress is a payout destination owned by the remote ledger;
// the client only creates and lists rows.
type PayoutAddress struct {
	Currency Currency   `json:"currency"`
	Network  Network    `json:"network"`
	Address  string     `json:"address"`
	IsLocked bool       `json:"isLocked"`
	LockedAt *time.Time `json:"lockedAt,omitempty"`
}

// WithdrawRequest is a withdrawal row created on the remote ledger.
// There is no client-side idempotency key; duplicate calls create
// duplicate remote rows.
type WithdrawRequest struct {
	UserID   string   `json:"userId"`
	Currency Currency `json:"currency"`
	Network  Network  `json:"network"`
	Address  string   `json:"address"`
	Amount   float64  `json:"amount"`
	Fee      float64  `json:"fee"`
}

// UserState mirrors the remote membership-state row
type UserState struct {
	CurrentLevel TierLevel `json:"currentLevel"`
	IsActivated  bool      `json:"isActivated"`
	IsFunded     bool      `json:"isFunded"`
	IsLocked     bool      `json:"isLocked"`
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
