package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapbridge/pkg/flow"
	"swapbridge/pkg/parser"
	"swapbridge/pkg/types"
)

var (
	runAmount    string
	runPair      string
	runRecipient string
	runMemo      string
	runYes       bool
)

var runCmd = &cobra.Command{
	Use:   "run [<amount> ETH to <USDC|USDT>]",
	Short: "Connect, swap and send in one go",
	Long: `Run the full payment flow: connect the wallet, swap ETH to the selected
stablecoin, confirm, then send it to the Stellar recipient.

Examples:
  swapbridge run --amount 0.5 --recipient GBRPYHIL2CI3FNQ4BXLFMNDLFJUNPU2HY3ZMFSHONUCEOASW7QC7OX2H
  swapbridge run 0.5 ETH to USDC --recipient G...
  swapbridge run --amount 1 --pair ETH_USDT --recipient G... --memo "invoice 42"
  swapbridge run --amount 1 --recipient G... --yes --json`,
	Run: runFlow,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runAmount, "amount", "a", "", "Amount of ETH to swap")
	runCmd.Flags().StringVarP(&runPair, "pair", "p", string(types.DefaultPair), "Token pair (ETH_USDC or ETH_USDT)")
	runCmd.Flags().StringVarP(&runRecipient, "recipient", "r", "", "Stellar address receiving the stablecoin")
	runCmd.Flags().StringVar(&runMemo, "memo", "", "Optional memo attached to the transfer")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "Skip confirmation prompts")
}

// runner drives a controller through the stages from the command line
type runner struct {
	ctx         context.Context
	ctrl        *flow.Controller
	spin        *spinner.Spinner
	interactive bool
	jsonOutput  bool
}

func runFlow(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, log := loadConfig(cmd)

	amount, pair, err := runInputs(args)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	providers, cleanup, err := buildProviders(cfg, !jsonOutput, log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{
		ctx:         ctx,
		spin:        spinner.New(spinner.CharSets[14], 100*time.Millisecond),
		interactive: !runYes && !jsonOutput,
		jsonOutput:  jsonOutput,
	}
	r.ctrl = flow.NewController(providers, flow.WithLogger(log), flow.WithObserver(r.observe))
	defer r.ctrl.Close()

	// fields are editable until the swap starts
	for _, set := range []func() error{
		func() error { return r.ctrl.SetAmount(amount) },
		func() error { return r.ctrl.SetTokenPair(pair) },
		func() error { return r.ctrl.SetRecipientAddress(runRecipient) },
		func() error { return r.ctrl.SetMemo(runMemo) },
	} {
		if err := set(); err != nil {
			printError(err)
			os.Exit(1)
		}
	}

	if errs := flow.Validate(r.ctrl.State().Fields); !errs.Empty() {
		if jsonOutput {
			printJSON(errs)
		} else {
			displayValidationErrors(errs)
		}
		os.Exit(1)
	}

	err = r.execute()
	r.finish(err)
	if err != nil {
		r.ctrl.Close()
		cleanup()
		os.Exit(1)
	}
}

// runInputs takes amount and pair from a "1.5 ETH to USDC" argument list when
// one is given, otherwise from flags
func runInputs(args []string) (string, types.TokenPair, error) {
	if len(args) > 0 {
		command, err := parser.ParseSwapCommand(strings.Join(args, " "))
		if err != nil {
			return "", "", err
		}
		return command.Amount, command.Pair, nil
	}

	pair, err := types.ParseTokenPair(runPair)
	if err != nil {
		return "", "", err
	}
	return runAmount, pair, nil
}

func (r *runner) execute() error {
	if err := r.stage("Connecting wallet...", r.ctrl.Connect); err != nil {
		return err
	}
	if !r.jsonOutput {
		fmt.Printf("  Wallet: %s\n", color.CyanString(r.ctrl.Session().WalletAddress))
	}

	if err := r.stage("Swapping...", r.ctrl.StartSwap); err != nil {
		return err
	}

	st := r.ctrl.State()
	if r.interactive {
		displayReceipt("SWAP COMPLETE", st.SwapReceipt)
		if !confirm(fmt.Sprintf("Send to %s?", st.Fields.RecipientAddress)) {
			color.Yellow("\nSend cancelled. The swapped funds stay in your wallet.\n")
			return nil
		}
	}

	return r.stage("Sending...", r.ctrl.StartSend)
}

// stage starts an operation and blocks until it settles. Provider failures
// can be retried interactively.
func (r *runner) stage(label string, start func(context.Context) error) error {
	for {
		err := r.drive(label, start)
		if err == nil {
			return nil
		}
		if !r.interactive || r.ctx.Err() != nil || r.ctrl.State().Status != flow.StatusError {
			return err
		}

		color.Red("\n✗ %v", err)
		if !confirm("Retry?") {
			return err
		}
		start = r.ctrl.Retry
	}
}

func (r *runner) drive(label string, start func(context.Context) error) error {
	if !r.jsonOutput {
		r.spin.Suffix = " " + label
		r.spin.Start()
		defer r.spin.Stop()
	}

	if err := start(r.ctx); err != nil {
		return err
	}
	if err := r.ctrl.Wait(r.ctx); err != nil {
		return err
	}

	if st := r.ctrl.State(); st.Status == flow.StatusError {
		return errors.New(st.Message)
	}
	return nil
}

// observe runs under the controller lock; it only touches the spinner
func (r *runner) observe(snap flow.Snapshot) {
	if r.jsonOutput {
		return
	}

	st := snap.State
	var suffix string
	switch st.Status {
	case flow.StatusConnecting:
		suffix = " Connecting wallet..."
	case flow.StatusSwapping:
		suffix = fmt.Sprintf(" Swapping %s %s to %s... %d%%", st.Fields.Amount, st.Fields.TokenPair.Source(), st.Fields.TokenPair.Dest(), st.Progress)
	case flow.StatusSending:
		suffix = fmt.Sprintf(" Sending %s to Stellar... %d%%", st.Fields.TokenPair.Dest(), st.Progress)
	default:
		return
	}

	r.spin.Lock()
	r.spin.Suffix = suffix
	r.spin.Unlock()
}

func (r *runner) finish(err error) {
	snap := r.ctrl.Snapshot()
	if r.jsonOutput {
		printJSON(snap)
		return
	}

	if err != nil {
		printError(err)
		return
	}
	if snap.State.Status == flow.StatusSuccess {
		displayReceipt("TRANSACTION COMPLETE", snap.State.SendReceipt)
		printSuccess(color.GreenString("✓ Payment delivered"))
	}
}

func displayReceipt(title string, receipt *types.Receipt) {
	if receipt == nil {
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("%s", centered(title, 60))
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  Receipt:           %s\n", receipt.ID)
	fmt.Printf("  Amount In:         %s\n", receipt.AmountIn)
	if receipt.AmountOut != "" {
		fmt.Printf("  Amount Out:        %s %s\n", receipt.AmountOut, color.YellowString(receipt.Token))
	} else {
		fmt.Printf("  Token:             %s\n", color.YellowString(receipt.Token))
	}
	if receipt.Recipient != "" {
		fmt.Printf("  Recipient:         %s\n", color.CyanString(receipt.Recipient))
	}
	if receipt.Memo != "" {
		fmt.Printf("  Memo:              %s\n", color.MagentaString(receipt.Memo))
	}
	if receipt.DepositAddress != "" {
		fmt.Printf("  Deposit Address:   %s\n", receipt.DepositAddress)
	}
	if receipt.TxHash != "" {
		fmt.Printf("  Deposit Tx:        %s\n", color.HiBlackString(receipt.TxHash))
	}
	if receipt.DestTxHash != "" {
		fmt.Printf("  Delivery Tx:       %s\n", color.HiBlackString(receipt.DestTxHash))
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func displayValidationErrors(errs flow.ValidationErrors) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	fmt.Println()
	for _, field := range fields {
		color.Red("  ✗ %-18s %s", field, errs[field])
	}
	fmt.Println()
}

func centered(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", (width-len(s))/2) + s
}

func printJSON(v interface{}) {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(jsonData))
}
