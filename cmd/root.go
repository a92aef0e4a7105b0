package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"swapbridge/config"
	"swapbridge/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "swapbridge",
	Short: "Swap ETH to a stablecoin and send it to a Stellar address",
	Long: `swapbridge drives a three step payment flow: connect a wallet, swap ETH to
USDC or USDT, then send the stablecoin to a Stellar address.

By default every provider is simulated. Set mode: live in .swapbridge.yaml to
execute through the NEAR Intents 1Click API.

Examples:
  swapbridge run --amount 0.5 --pair ETH_USDC --recipient G...
  swapbridge validate --amount 0.5 --recipient G...
  swapbridge tokens --chain stellar
  swapbridge status <deposit-address>`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}

// loadConfig loads configuration and a logger; --verbose forces debug level
func loadConfig(cmd *cobra.Command) (*config.Config, *logrus.Logger) {
	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	return cfg, log
}

// requireJWT stops commands that talk to 1Click without credentials
func requireJWT(cfg *config.Config) {
	if cfg.OneClick.JWTToken == "" {
		printError(fmt.Errorf("JWT token not found. Please set SWAPBRIDGE_ONECLICK_JWT_TOKEN environment variable or add oneclick.jwt_token to .swapbridge.yaml"))
		os.Exit(1)
	}
}

var stdin = bufio.NewReader(os.Stdin)

func confirm(prompt string) bool {
	fmt.Printf("\n%s (y/N): ", prompt)

	response, err := stdin.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
