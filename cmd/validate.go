package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swapbridge/pkg/flow"
)

var (
	validateAmount    string
	validateRecipient string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check form values without running the flow",
	Long: `Validate an amount and a Stellar recipient address the same way the flow
does before swapping. Exits with status 1 when a value is invalid.

Examples:
  swapbridge validate --amount 0.5 --recipient G...
  swapbridge validate --amount abc --json`,
	Args: cobra.NoArgs,
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateAmount, "amount", "a", "", "Amount of ETH to swap")
	validateCmd.Flags().StringVarP(&validateRecipient, "recipient", "r", "", "Stellar recipient address")
}

func runValidate(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	errs := flow.Validate(flow.Fields{
		Amount:           validateAmount,
		RecipientAddress: validateRecipient,
	})

	if jsonOutput {
		printJSON(errs)
	} else if errs.Empty() {
		color.Green("\n✓ All fields are valid\n")
	} else {
		displayValidationErrors(errs)
	}

	if !errs.Empty() {
		os.Exit(1)
	}
}
