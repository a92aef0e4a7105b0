package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swapbridge/pkg/client"
	"swapbridge/pkg/types"
)

// USDT is listed on neither chain
const tokensJSON = `[
  {"assetId": "nep141:eth.omft.near", "decimals": 18, "blockchain": "eth", "symbol": "ETH", "price": 3000, "priceUpdatedAt": "2025-01-01T00:00:00Z"},
  {"assetId": "nep141:eth-usdc.omft.near", "decimals": 6, "blockchain": "eth", "symbol": "USDC", "price": 1, "priceUpdatedAt": "2025-01-01T00:00:00Z", "contractAddress": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
  {"assetId": "nep141:stellar-usdc.omft.near", "decimals": 7, "blockchain": "stellar", "symbol": "USDC", "price": 1, "priceUpdatedAt": "2025-01-01T00:00:00Z"},
  {"assetId": "nep141:sol.omft.near", "decimals": 9, "blockchain": "sol", "symbol": "SOL", "price": 150, "priceUpdatedAt": "2025-01-01T00:00:00Z"}
]`

func fetchTestTokens(t *testing.T) *client.OneClickClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/tokens") {
			_, _ = w.Write([]byte(tokensJSON))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return client.NewOneClickClient("token", server.URL)
}

func TestCheckFlowTokens(t *testing.T) {
	tokens, err := fetchTestTokens(t).GetSupportedTokens(context.Background())
	require.NoError(t, err)

	report := checkFlowTokens(tokens, "eth", "stellar")
	assert.Equal(t, "eth", report.SourceChain)
	assert.Equal(t, "stellar", report.DestChain)

	missing := map[string]bool{}
	for _, check := range report.Tokens {
		missing[check.Symbol+"@"+check.Chain] = check.Missing
	}
	assert.Equal(t, map[string]bool{
		"ETH@eth":      false,
		"USDC@eth":     false,
		"USDT@eth":     true,
		"USDC@stellar": false,
		"USDT@stellar": true,
	}, missing)

	assert.Equal(t, []pairCheck{
		{Pair: types.PairETHUSDC, Usable: true},
		{Pair: types.PairETHUSDT, Usable: false},
	}, report.Pairs)
	assert.True(t, report.usable())

	usdc := report.Tokens[1]
	assert.Equal(t, "nep141:eth-usdc.omft.near", usdc.AssetID)
	assert.Equal(t, 6, usdc.Decimals)
	assert.Equal(t, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", usdc.Contract)

	assert.True(t, report.uses(tokens[2]))
	assert.False(t, report.uses(tokens[3]))
}

func TestCheckFlowTokens_NoUsablePair(t *testing.T) {
	tokens, err := fetchTestTokens(t).GetSupportedTokens(context.Background())
	require.NoError(t, err)

	report := checkFlowTokens(tokens, "eth", "near")
	assert.False(t, report.usable())
	assert.True(t, report.missing("USDC", "near"))
	assert.False(t, report.missing("ETH", "eth"))
}

func TestFilterTokens(t *testing.T) {
	tokens, err := fetchTestTokens(t).GetSupportedTokens(context.Background())
	require.NoError(t, err)

	assert.Len(t, filterTokens(tokens, "", ""), 4)
	assert.Len(t, filterTokens(tokens, "ETH", ""), 2)
	assert.Len(t, filterTokens(tokens, "", "usd"), 2)

	stellar := filterTokens(tokens, "stellar", "USDC")
	require.Len(t, stellar, 1)
	assert.Equal(t, "nep141:stellar-usdc.omft.near", stellar[0].GetAssetId())

	assert.Empty(t, filterTokens(tokens, "btc", ""))
}
