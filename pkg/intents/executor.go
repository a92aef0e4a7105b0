package intents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"swapbridge/pkg/client"
	"swapbridge/pkg/deposit"
	"swapbridge/pkg/provider"
	"swapbridge/pkg/types"
)

// Progress estimates reported while an intent executes
const (
	ProgressQuoted       = 10
	ProgressDeposited    = 30
	ProgressKnownDeposit = 50
	ProgressProcessing   = 75
	ProgressComplete     = 100
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultTimeout      = time.Hour
)

// ErrExecutionFailed is returned when 1Click reports FAILED or REFUNDED
var ErrExecutionFailed = errors.New("intent execution failed")

// Options configures both providers
type Options struct {
	// SourceChain is the 1Click name of the EVM chain deposits are made on
	SourceChain string
	// DestChain is where the bridge delivers the stablecoin
	DestChain string
	// Account receives swap output and refunds; defaults to the request owner
	Account string
	// Tokens maps a symbol to its ERC20 contract on SourceChain
	Tokens       map[string]string
	PollInterval time.Duration
	Timeout      time.Duration
}

type order struct {
	source    Token
	dest      Token
	amount    string
	recipient string
	refundTo  string
	memo      string
}

// executor runs quote, deposit and status polling for one order
type executor struct {
	api       API
	depositor deposit.Depositor
	opts      Options
	log       logrus.FieldLogger
}

func newExecutor(api API, depositor deposit.Depositor, opts Options, log logrus.FieldLogger) *executor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	tokens := make(map[string]string, len(opts.Tokens))
	for symbol, contract := range opts.Tokens {
		tokens[strings.ToLower(symbol)] = contract
	}
	opts.Tokens = tokens

	return &executor{api: api, depositor: depositor, opts: opts, log: log}
}

// account picks the address that receives output and refunds on SourceChain
func (e *executor) account(owner string) string {
	if e.opts.Account != "" {
		return e.opts.Account
	}
	return owner
}

// resolve looks up a pair of tokens
func (e *executor) resolve(ctx context.Context, sourceSymbol, sourceChain, destSymbol, destChain string) (Token, Token, error) {
	source, err := e.api.Token(ctx, sourceSymbol, sourceChain)
	if err != nil {
		return Token{}, Token{}, fmt.Errorf("failed to resolve source token: %w", err)
	}
	dest, err := e.api.Token(ctx, destSymbol, destChain)
	if err != nil {
		return Token{}, Token{}, fmt.Errorf("failed to resolve destination token: %w", err)
	}
	return source, dest, nil
}

// contractFor returns the ERC20 contract of a token on SourceChain
func (e *executor) contractFor(token Token) (string, error) {
	if contract := e.opts.Tokens[strings.ToLower(token.Symbol)]; contract != "" {
		return contract, nil
	}
	if token.Contract != "" {
		return token.Contract, nil
	}
	return "", fmt.Errorf("no contract address known for %s on %s", token.Symbol, token.Chain)
}

func (e *executor) run(ctx context.Context, o order, native bool, progress provider.ProgressFunc) (*types.Receipt, error) {
	log := e.log.WithFields(logrus.Fields{
		"source": o.source.AssetID,
		"dest":   o.dest.AssetID,
		"amount": o.amount,
	})

	quote, err := e.api.Quote(ctx, client.QuoteParams{
		OriginAsset:      o.source.AssetID,
		OriginDecimals:   o.source.Decimals,
		DestinationAsset: o.dest.AssetID,
		Amount:           o.amount,
		Recipient:        o.recipient,
		RefundTo:         o.refundTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if quote.DepositAddress == "" {
		return nil, fmt.Errorf("quote has no deposit address")
	}
	report(progress, ProgressQuoted)

	log = log.WithField("deposit_address", quote.DepositAddress)
	log.WithFields(logrus.Fields{
		"amount_out":        quote.AmountOut,
		"time_estimate_sec": quote.TimeEstimate,
	}).Info("quote received")

	var txHash string
	if native {
		txHash, err = e.depositor.SendNative(ctx, quote.DepositAddress, o.amount)
	} else {
		contract, cerr := e.contractFor(o.source)
		if cerr != nil {
			return nil, cerr
		}
		txHash, err = e.depositor.SendToken(ctx, contract, quote.DepositAddress, o.amount, o.source.Decimals)
	}
	if err != nil {
		return nil, fmt.Errorf("deposit failed: %w", err)
	}
	report(progress, ProgressDeposited)
	log.WithField("tx", txHash).Info("deposit sent")

	// 1Click also detects deposits on its own; submitting only speeds it up
	if err := e.api.SubmitDeposit(ctx, quote.DepositAddress, txHash); err != nil {
		log.WithError(err).Warn("failed to submit deposit tx")
	}

	exec, err := e.wait(ctx, quote.DepositAddress, progress)
	if err != nil {
		return nil, err
	}

	amountIn := exec.AmountIn
	if amountIn == "" {
		amountIn = o.amount
	}
	amountOut := exec.AmountOut
	if amountOut == "" {
		amountOut = quote.AmountOut
	}

	return &types.Receipt{
		ID:             uuid.New().String(),
		TxHash:         txHash,
		DestTxHash:     exec.DestTxHash,
		DepositAddress: quote.DepositAddress,
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		Token:          o.dest.Symbol,
		Recipient:      o.recipient,
		Memo:           o.memo,
		CompletedAt:    time.Now(),
	}, nil
}

// wait polls execution status until it is terminal, the timeout passes or
// ctx ends. Status lookups that fail are retried on the next tick.
func (e *executor) wait(ctx context.Context, depositAddress string, progress provider.ProgressFunc) (Execution, error) {
	pollCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(e.opts.PollInterval)
	defer ticker.Stop()

	reported := ProgressDeposited
	for {
		exec, err := e.api.Status(pollCtx, depositAddress)
		if err != nil {
			e.log.WithError(err).WithField("deposit_address", depositAddress).Debug("status check failed")
		} else {
			status := strings.ToUpper(exec.Status)
			if p := statusProgress(status); p > reported {
				reported = p
				report(progress, p)
			}
			switch status {
			case client.StatusSuccess:
				return exec, nil
			case client.StatusFailed, client.StatusRefunded:
				return exec, fmt.Errorf("swap %s: %w", strings.ToLower(status), ErrExecutionFailed)
			}
		}

		select {
		case <-pollCtx.Done():
			if ctx.Err() != nil {
				return Execution{}, ctx.Err()
			}
			return Execution{}, fmt.Errorf("timed out after %s waiting for %s", e.opts.Timeout, depositAddress)
		case <-ticker.C:
		}
	}
}

// statusProgress maps an execution status to a progress estimate
func statusProgress(status string) int {
	switch status {
	case client.StatusKnownDepositTx:
		return ProgressKnownDeposit
	case client.StatusProcessing:
		return ProgressProcessing
	case client.StatusSuccess:
		return ProgressComplete
	}
	return 0
}

func report(progress provider.ProgressFunc, percent int) {
	if progress != nil {
		progress(percent)
	}
}
