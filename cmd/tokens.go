package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapbridge/pkg/client"
	"swapbridge/pkg/types"
)

var (
	filterChain  string
	filterSymbol string
	listAll      bool
)

var tokensCmd = &cobra.Command{
	Use:     "tokens",
	Aliases: []string{"list-tokens", "ls"},
	Short:   "Check the tokens the flow needs on 1Click",
	Long: `Check that the NEAR Intents 1Click API supports every token the flow uses:
ETH, USDC and USDT on the configured EVM chain (evm.chain) and the stablecoin
on the destination chain (oneclick.dest_chain). Exits with status 1 when no
token pair can be executed.

Use --all, --chain or --symbol to browse every supported token instead.

Examples:
  swapbridge tokens
  swapbridge tokens --json
  swapbridge tokens --all
  swapbridge tokens --chain stellar --symbol USDC`,
	Run: runListTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().BoolVar(&listAll, "all", false, "List every supported token")
	tokensCmd.Flags().StringVar(&filterChain, "chain", "", "Filter by blockchain")
	tokensCmd.Flags().StringVar(&filterSymbol, "symbol", "", "Filter by token symbol")
}

// tokenCheck is one token the flow depends on
type tokenCheck struct {
	Symbol   string `json:"symbol"`
	Chain    string `json:"chain"`
	AssetID  string `json:"asset_id,omitempty"`
	Decimals int    `json:"decimals,omitempty"`
	Contract string `json:"contract_address,omitempty"`
	Missing  bool   `json:"missing"`
}

// pairCheck reports whether a token pair can run end to end
type pairCheck struct {
	Pair   types.TokenPair `json:"pair"`
	Usable bool            `json:"usable"`
}

type flowTokens struct {
	SourceChain string       `json:"source_chain"`
	DestChain   string       `json:"dest_chain"`
	Tokens      []tokenCheck `json:"tokens"`
	Pairs       []pairCheck  `json:"pairs"`
}

// usable reports whether at least one pair has all of its tokens
func (f flowTokens) usable() bool {
	for _, p := range f.Pairs {
		if p.Usable {
			return true
		}
	}
	return false
}

func (f flowTokens) missing(symbol, chain string) bool {
	for _, t := range f.Tokens {
		if strings.EqualFold(t.Symbol, symbol) && strings.EqualFold(t.Chain, chain) {
			return t.Missing
		}
	}
	return true
}

// uses reports whether token is one the flow resolves
func (f flowTokens) uses(token oneclick.TokenResponse) bool {
	for _, t := range f.Tokens {
		if !t.Missing && t.AssetID == token.GetAssetId() {
			return true
		}
	}
	return false
}

// checkFlowTokens looks up the swap leg tokens on sourceChain and the
// delivered stablecoins on destChain
func checkFlowTokens(tokens []oneclick.TokenResponse, sourceChain, destChain string) flowTokens {
	pairs := []types.TokenPair{types.PairETHUSDC, types.PairETHUSDT}
	report := flowTokens{SourceChain: sourceChain, DestChain: destChain}

	wanted := []tokenCheck{{Symbol: pairs[0].Source(), Chain: sourceChain}}
	for _, pair := range pairs {
		wanted = append(wanted, tokenCheck{Symbol: pair.Dest(), Chain: sourceChain})
	}
	for _, pair := range pairs {
		wanted = append(wanted, tokenCheck{Symbol: pair.Dest(), Chain: destChain})
	}

	for _, check := range wanted {
		token, err := client.MatchToken(tokens, check.Symbol, check.Chain)
		if err != nil {
			check.Missing = true
		} else {
			check.AssetID = token.GetAssetId()
			check.Decimals = int(token.GetDecimals())
			check.Contract = token.GetContractAddress()
		}
		report.Tokens = append(report.Tokens, check)
	}

	for _, pair := range pairs {
		usable := !report.missing(pair.Source(), sourceChain) &&
			!report.missing(pair.Dest(), sourceChain) &&
			!report.missing(pair.Dest(), destChain)
		report.Pairs = append(report.Pairs, pairCheck{Pair: pair, Usable: usable})
	}

	return report
}

// filterTokens keeps tokens on chain whose symbol contains symbol; empty
// arguments do not filter
func filterTokens(tokens []oneclick.TokenResponse, chain, symbol string) []oneclick.TokenResponse {
	var filtered []oneclick.TokenResponse
	for _, token := range tokens {
		if chain != "" && !strings.EqualFold(token.GetBlockchain(), chain) {
			continue
		}
		if symbol != "" && !strings.Contains(strings.ToUpper(token.GetSymbol()), strings.ToUpper(symbol)) {
			continue
		}
		filtered = append(filtered, token)
	}
	return filtered
}

func runListTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, _ := loadConfig(cmd)
	requireJWT(cfg)

	apiClient := client.NewOneClickClient(cfg.OneClick.JWTToken, cfg.OneClick.BaseURL)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching supported tokens..."
		s.Start()
	}

	tokens, err := apiClient.GetSupportedTokens(context.Background())
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if listAll || filterChain != "" || filterSymbol != "" {
		filtered := filterTokens(tokens, filterChain, filterSymbol)
		if jsonOutput {
			printJSON(filtered)
		} else {
			displayTokens(filtered, checkFlowTokens(tokens, cfg.EVM.Chain, cfg.OneClick.DestChain))
		}
		return
	}

	report := checkFlowTokens(tokens, cfg.EVM.Chain, cfg.OneClick.DestChain)
	if jsonOutput {
		printJSON(report)
	} else {
		displayFlowTokens(report)
	}
	if !report.usable() {
		os.Exit(1)
	}
}

func displayFlowTokens(report flowTokens) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("%s", centered("FLOW TOKENS", 70))
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Source Chain:      %s\n", color.CyanString(report.SourceChain))
	fmt.Printf("  Destination Chain: %s\n\n", color.CyanString(report.DestChain))

	for _, t := range report.Tokens {
		if t.Missing {
			fmt.Printf("  %s %-6s on %-10s %s\n", color.RedString("✗"), t.Symbol, t.Chain, color.RedString("not supported"))
			continue
		}
		fmt.Printf("  %s %-6s on %-10s %s\n", color.GreenString("✓"), t.Symbol, t.Chain, color.HiBlackString(t.AssetID))
	}

	fmt.Println()
	for _, p := range report.Pairs {
		if p.Usable {
			fmt.Printf("  %-9s %s\n", p.Pair, color.GreenString("ready"))
		} else {
			fmt.Printf("  %-9s %s\n", p.Pair, color.RedString("unavailable"))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func displayTokens(tokens []oneclick.TokenResponse, report flowTokens) {
	if len(tokens) == 0 {
		fmt.Println("\nNo tokens found matching the criteria.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	color.Green("%s", centered("SUPPORTED TOKENS", 90))
	fmt.Println(strings.Repeat("=", 90))

	tokensByChain := make(map[string][]oneclick.TokenResponse)
	for _, token := range tokens {
		chain := token.GetBlockchain()
		tokensByChain[chain] = append(tokensByChain[chain], token)
	}

	chains := make([]string, 0, len(tokensByChain))
	for chain := range tokensByChain {
		chains = append(chains, chain)
	}
	sort.Strings(chains)

	for _, chain := range chains {
		color.Cyan("\n%s", strings.ToUpper(chain))
		fmt.Println(strings.Repeat("-", 90))

		for _, token := range tokensByChain[chain] {
			address := token.GetContractAddress()
			if len(address) > 40 {
				address = address[:37] + "..."
			}

			marker := ""
			if report.uses(token) {
				marker = color.GreenString(" (flow)")
			}

			fmt.Printf("  %-10s  %2d decimals  %s%s\n",
				color.YellowString(token.GetSymbol()),
				int(token.GetDecimals()),
				color.HiBlackString(address),
				marker)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 90))
	fmt.Printf("\nTotal: %d tokens across %d blockchains\n\n", len(tokens), len(chains))
}
