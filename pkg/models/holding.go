package models

// HoldingKind discriminates the Holding variants.
type HoldingKind string

const (
	HoldingPublicEquity HoldingKind = "public_equity"
	HoldingPrivateStake HoldingKind = "private_stake"
	HoldingRealEstate   HoldingKind = "real_estate"
	HoldingCrypto       HoldingKind = "crypto"
	HoldingOther        HoldingKind = "other"
)

// Property is one real-estate asset, valued in its local currency.
type Property struct {
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
}

// CryptoPosition is a crypto holding priced in USD by convention.
type CryptoPosition struct {
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	PriceUSD float64 `json:"price_usd"`
}

// Holding is one component of a subject's portfolio. Which fields are
// meaningful depends on Kind:
//
//	public_equity: Symbol, Shares
//	private_stake: Entity, Stake (fraction in [0,1]), Valuation
//	real_estate:   Properties
//	crypto:        Positions
//	other:         Description, Value
type Holding struct {
	Kind        HoldingKind      `json:"kind"`
	Symbol      string           `json:"symbol,omitempty"`
	Shares      float64          `json:"shares,omitempty"`
	Entity      string           `json:"entity,omitempty"`
	Stake       float64          `json:"stake,omitempty"`
	Valuation   float64          `json:"valuation,omitempty"`
	Properties  []Property       `json:"properties,omitempty"`
	Positions   []CryptoPosition `json:"positions,omitempty"`
	Description string           `json:"description,omitempty"`
	Value       float64          `json:"value,omitempty"`
}

// Subject is a tracked entity. NetWorth is the curated baseline valuation
// in billions of USD, used until the monitor broadcasts a fresher figure.
type Subject struct {
	Name     string  `json:"name"`
	Industry string  `json:"industry,omitempty"`
	NetWorth float64 `json:"net_worth"`
}
