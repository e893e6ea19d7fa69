package core

// Variant identifies an exchange deployment surface.
// It is fixed when a client is constructed.
type Variant string

// Supported exchange variants.
const (
	VariantSpot                  Variant = "binance.com"
	VariantSpotTestnet           Variant = "binance.com-testnet"
	VariantMargin                Variant = "binance.com-margin"
	VariantMarginTestnet         Variant = "binance.com-margin-testnet"
	VariantIsolatedMargin        Variant = "binance.com-isolated_margin"
	VariantIsolatedMarginTestnet Variant = "binance.com-isolated_margin-testnet"
	VariantFutures               Variant = "binance.com-futures"
	VariantFuturesTestnet        Variant = "binance.com-futures-testnet"
	VariantJersey                Variant = "binance.je"
	VariantUS                    Variant = "binance.us"
	VariantJex                   Variant = "jex.com"
)

// String returns the variant identifier.
func (v Variant) String() string {
	return string(v)
}
