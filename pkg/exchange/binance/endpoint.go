package binance

import (
	"fmt"
	"slices"
	"strings"

	"userstream/pkg/core"
)

// Endpoint is where a variant's listen keys live.
type Endpoint struct {
	// BaseURI always ends with a slash.
	BaseURI string
	// Path is relative to BaseURI.
	Path string
	// RequiresSymbol is set for isolated margin, whose listen keys are per symbol.
	RequiresSymbol bool
}

const (
	spotBaseURI           = "https://api.binance.com/"
	spotTestnetBaseURI    = "https://testnet.binance.vision/"
	futuresBaseURI        = "https://fapi.binance.com/"
	futuresTestnetBaseURI = "https://testnet.binancefuture.com/"

	spotPath           = "api/v3/userDataStream"
	marginPath         = "sapi/v1/userDataStream"
	isolatedMarginPath = "sapi/v1/userDataStream/isolated"
	futuresPath        = "fapi/v1/listenKey"
	legacyPath         = "api/v1/userDataStream"
)

var endpoints = map[core.Variant]Endpoint{
	core.VariantSpot:                  {BaseURI: spotBaseURI, Path: spotPath},
	core.VariantSpotTestnet:           {BaseURI: spotTestnetBaseURI, Path: spotPath},
	core.VariantMargin:                {BaseURI: spotBaseURI, Path: marginPath},
	core.VariantMarginTestnet:         {BaseURI: spotTestnetBaseURI, Path: marginPath},
	core.VariantIsolatedMargin:        {BaseURI: spotBaseURI, Path: isolatedMarginPath, RequiresSymbol: true},
	core.VariantIsolatedMarginTestnet: {BaseURI: spotTestnetBaseURI, Path: isolatedMarginPath, RequiresSymbol: true},
	core.VariantFutures:               {BaseURI: futuresBaseURI, Path: futuresPath},
	core.VariantFuturesTestnet:        {BaseURI: futuresTestnetBaseURI, Path: futuresPath},
	core.VariantJersey:                {BaseURI: "https://api.binance.je/", Path: legacyPath},
	core.VariantUS:                    {BaseURI: "https://api.binance.us/", Path: legacyPath},
	core.VariantJex:                   {BaseURI: "https://www.jex.com/", Path: legacyPath},
}

// Resolve returns the endpoint of variant.
func Resolve(variant core.Variant) (Endpoint, error) {
	ep, ok := endpoints[variant]
	if !ok {
		return Endpoint{}, core.NewError(core.ErrorTypeUnsupportedVariant,
			fmt.Sprintf("no listen-key endpoint for %q", variant)).WithOp("resolve")
	}
	return ep, nil
}

// Variants returns every supported variant in sorted order.
func Variants() []core.Variant {
	variants := make([]core.Variant, 0, len(endpoints))
	for v := range endpoints {
		variants = append(variants, v)
	}
	slices.Sort(variants)
	return variants
}

// URL returns the full listen-key URL.
func (e Endpoint) URL() string {
	return e.BaseURI + e.Path
}

// formatSymbol converts "BTC/USDT" and "btcusdt" to "BTCUSDT".
func formatSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}
