package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	oneclick "github.com/defuse-protocol/one-click-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapbridge/pkg/client"
)

var (
	watchStatus   bool
	watchInterval int
)

var statusCmd = &cobra.Command{
	Use:   "status <deposit-address>",
	Short: "Check the status of a swap",
	Long: `Check the execution status of a swap or send by the deposit address
printed in its receipt. Watching stops once the status is final.

Examples:
  swapbridge status 0x1234...abcd
  swapbridge status 0x1234...abcd --watch
  swapbridge status 0x1234...abcd --watch --interval 10`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Watch status updates continuously")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 5, "Polling interval in seconds (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	depositAddress := args[0]
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, _ := loadConfig(cmd)
	requireJWT(cfg)

	apiClient := client.NewOneClickClient(cfg.OneClick.JWTToken, cfg.OneClick.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watchStatus {
		watchSwapStatus(ctx, apiClient, depositAddress, jsonOutput)
	} else {
		checkSwapStatus(ctx, apiClient, depositAddress, jsonOutput)
	}
}

func checkSwapStatus(ctx context.Context, apiClient *client.OneClickClient, depositAddress string, jsonOutput bool) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking swap status..."
		s.Start()
	}

	status, err := apiClient.GetSwapStatus(ctx, depositAddress)
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(status)
	} else {
		displayStatus(status, depositAddress)
	}
}

func watchSwapStatus(ctx context.Context, apiClient *client.OneClickClient, depositAddress string, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(`{"error": "watch mode not supported with JSON output"}`)
		os.Exit(1)
	}

	fmt.Printf("\nWatching swap status (Deposit Address: %s)\n", color.CyanString(depositAddress))
	fmt.Printf("Checking every %d seconds. Press Ctrl+C to stop.\n\n", watchInterval)

	ticker := time.NewTicker(time.Duration(watchInterval) * time.Second)
	defer ticker.Stop()

	// Check immediately, then on every tick until the status is final
	for !checkAndDisplayStatus(ctx, apiClient, depositAddress) {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// checkAndDisplayStatus reports whether the status is final
func checkAndDisplayStatus(ctx context.Context, apiClient *client.OneClickClient, depositAddress string) bool {
	status, err := apiClient.GetSwapStatus(ctx, depositAddress)
	if err != nil {
		color.Red("Error: %v", err)
		return false
	}

	displayStatus(status, depositAddress)
	return client.IsTerminal(status.GetStatus())
}

func displayStatus(status *oneclick.GetExecutionStatusResponse, depositAddress string) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                        SWAP STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Deposit Address: %s\n", color.CyanString(depositAddress))
	fmt.Printf("  Status:          %s\n", getColoredStatus(status.GetStatus()))
	fmt.Printf("  Last Updated:    %s\n", status.GetUpdatedAt().Format("2006-01-02 15:04:05"))

	// Display swap details if available
	swapDetails := status.GetSwapDetails()

	// Display origin chain transactions (deposits)
	originTxs := swapDetails.GetOriginChainTxHashes()
	if len(originTxs) > 0 {
		for _, tx := range originTxs {
			hash := tx.GetHash()
			if hash != "" {
				fmt.Printf("  Deposit Tx:      %s\n", color.HiBlackString(hash))
			}
		}
	}

	// Display destination chain transactions (withdrawals)
	destTxs := swapDetails.GetDestinationChainTxHashes()
	if len(destTxs) > 0 {
		for _, tx := range destTxs {
			hash := tx.GetHash()
			if hash != "" {
				fmt.Printf("  Withdrawal Tx:   %s\n", color.HiBlackString(hash))
			}
		}
	}

	// Display amounts if available
	if swapDetails.HasAmountInFormatted() {
		fmt.Printf("  Amount In:       %s\n", swapDetails.GetAmountInFormatted())
	}
	if swapDetails.HasAmountOutFormatted() {
		fmt.Printf("  Amount Out:      %s\n", swapDetails.GetAmountOutFormatted())
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func getColoredStatus(status string) string {
	status = strings.ToUpper(status)

	switch status {
	case client.StatusSuccess:
		return color.GreenString(status)
	case client.StatusPendingDeposit, client.StatusKnownDepositTx, client.StatusProcessing:
		return color.YellowString(status)
	case client.StatusFailed, client.StatusRefunded:
		return color.RedString(status)
	case client.StatusIncompleteDeposit:
		return color.MagentaString(status)
	default:
		return status
	}
}
