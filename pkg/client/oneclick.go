package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oneclick "github.com/defuse-protocol/one-click-sdk-go"

	"swapbridge/pkg/deposit"
)

// Terminal and intermediate execution statuses reported by 1Click
const (
	StatusPendingDeposit    = "PENDING_DEPOSIT"
	StatusKnownDepositTx    = "KNOWN_DEPOSIT_TX"
	StatusIncompleteDeposit = "INCOMPLETE_DEPOSIT"
	StatusProcessing        = "PROCESSING"
	StatusSuccess           = "SUCCESS"
	StatusRefunded          = "REFUNDED"
	StatusFailed            = "FAILED"
)

// slippageToleranceBps is 1%
const slippageToleranceBps = 100

// OneClickClient wraps the 1Click SDK
type OneClickClient struct {
	client   *oneclick.APIClient
	jwtToken string
}

// QuoteParams describes a quote request in token units
type QuoteParams struct {
	OriginAsset      string
	OriginDecimals   int
	DestinationAsset string
	Amount           string // decimal amount of the origin token
	Recipient        string
	RefundTo         string
	Dry              bool
}

// NewOneClickClient creates a new 1Click API client. An empty baseURL keeps
// the SDK default server.
func NewOneClickClient(jwtToken, baseURL string) *OneClickClient {
	return NewOneClickClientWithHTTP(jwtToken, baseURL, nil)
}

// NewOneClickClientWithHTTP lets callers supply the HTTP client
func NewOneClickClientWithHTTP(jwtToken, baseURL string, httpClient *http.Client) *OneClickClient {
	config := oneclick.NewConfiguration()
	if baseURL != "" {
		config.Servers = oneclick.ServerConfigurations{{URL: strings.TrimRight(baseURL, "/")}}
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &OneClickClient{
		client:   oneclick.NewAPIClient(config),
		jwtToken: jwtToken,
	}
}

// authContext attaches the JWT token to ctx
func (c *OneClickClient) authContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oneclick.ContextAccessToken, c.jwtToken)
}

// GetSupportedTokens retrieves all supported tokens
func (c *OneClickClient) GetSupportedTokens(ctx context.Context) ([]oneclick.TokenResponse, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetTokens(c.authContext(ctx)).Execute()
	if err != nil {
		return nil, apiError("failed to get tokens", httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return resp, nil
}

// FindTokenOnChain searches for a token by symbol on a specific chain
func (c *OneClickClient) FindTokenOnChain(ctx context.Context, symbol, chain string) (*oneclick.TokenResponse, error) {
	tokens, err := c.GetSupportedTokens(ctx)
	if err != nil {
		return nil, err
	}

	return MatchToken(tokens, symbol, chain)
}

// MatchToken picks the token with the given symbol on the given chain
func MatchToken(tokens []oneclick.TokenResponse, symbol, chain string) (*oneclick.TokenResponse, error) {
	for i := range tokens {
		if strings.EqualFold(tokens[i].GetSymbol(), symbol) &&
			strings.EqualFold(tokens[i].GetBlockchain(), chain) {
			return &tokens[i], nil
		}
	}

	return nil, fmt.Errorf("token '%s' not found on chain '%s'", strings.ToUpper(symbol), chain)
}

// GetQuote generates a swap quote
func (c *OneClickClient) GetQuote(ctx context.Context, p QuoteParams) (*oneclick.QuoteResponse, error) {
	if p.OriginAsset == "" || p.DestinationAsset == "" {
		return nil, fmt.Errorf("source and destination tokens are required")
	}
	if p.Recipient == "" {
		return nil, fmt.Errorf("recipient address is required")
	}

	units, err := deposit.ParseAmount(p.Amount, p.OriginDecimals)
	if err != nil {
		return nil, err
	}
	amountStr := units.String()

	// Set refund address - use provided refund address or default to recipient
	refundTo := p.RefundTo
	if refundTo == "" {
		refundTo = p.Recipient
	}

	// Calculate deadline (24 hours from now)
	deadline := time.Now().Add(24 * time.Hour)

	quoteReq := oneclick.NewQuoteRequest(
		p.Dry,                // dry - false to get a real deposit address
		"EXACT_INPUT",        // swapType
		slippageToleranceBps, // slippageTolerance
		p.OriginAsset,        // originAsset
		"ORIGIN_CHAIN",       // depositType
		p.DestinationAsset,   // destinationAsset
		amountStr,            // amount in smallest unit
		refundTo,             // refundTo
		"ORIGIN_CHAIN",       // refundType
		p.Recipient,          // recipient
		"DESTINATION_CHAIN",  // recipientType
		deadline,             // deadline
	)

	resp, httpResp, err := c.client.OneClickAPI.GetQuote(c.authContext(ctx)).QuoteRequest(*quoteReq).Execute()
	if err != nil {
		return nil, apiError("failed to get quote from API", httpResp, err)
	}
	defer httpResp.Body.Close()

	// Check for successful status codes (200-299)
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	if resp == nil {
		return nil, fmt.Errorf("empty quote response")
	}

	return resp, nil
}

// apiError extracts the message of a failed API call from its body
func apiError(prefix string, httpResp *http.Response, err error) error {
	if httpResp == nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	defer httpResp.Body.Close()

	bodyBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil || len(bodyBytes) == 0 {
		return fmt.Errorf("%s (status: %d): %w", prefix, httpResp.StatusCode, err)
	}

	var errorResp map[string]interface{}
	if jsonErr := json.Unmarshal(bodyBytes, &errorResp); jsonErr == nil {
		if message, ok := errorResp["message"].(string); ok {
			return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, message)
		}
		if errors, ok := errorResp["errors"]; ok {
			return fmt.Errorf("API error (status %d): %v", httpResp.StatusCode, errors)
		}
	}
	return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(bodyBytes))
}

// GetSwapStatus checks the execution status of a swap
func (c *OneClickClient) GetSwapStatus(ctx context.Context, depositAddress string) (*oneclick.GetExecutionStatusResponse, error) {
	resp, httpResp, err := c.client.OneClickAPI.GetExecutionStatus(c.authContext(ctx)).DepositAddress(depositAddress).Execute()
	if err != nil {
		return nil, apiError("failed to get status", httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return resp, nil
}

// SubmitDepositTx submits the deposit transaction hash
func (c *OneClickClient) SubmitDepositTx(ctx context.Context, depositAddress, txHash string) error {
	req := oneclick.NewSubmitDepositTxRequest(depositAddress, txHash)

	_, httpResp, err := c.client.OneClickAPI.SubmitDepositTx(c.authContext(ctx)).SubmitDepositTxRequest(*req).Execute()
	if err != nil {
		return apiError("failed to submit deposit", httpResp, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		return fmt.Errorf("API returned status code %d", httpResp.StatusCode)
	}

	return nil
}

// IsTerminal reports whether a status will not change anymore
func IsTerminal(status string) bool {
	switch strings.ToUpper(status) {
	case StatusSuccess, StatusRefunded, StatusFailed:
		return true
	}
	return false
}
