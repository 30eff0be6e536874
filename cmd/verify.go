package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/newsletter-cli/internal/verify"
)

var verifyEmail string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check one email address against the configured verifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		verifier, err := buildVerifier(cfg)
		if err != nil {
			return err
		}
		if verifier == nil {
			verifier = verify.Syntactic{}
		}

		if verifier.Verify(cmd.Context(), verifyEmail) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", verifyEmail)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: invalid\n", verifyEmail)
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "address to verify (required)")
	_ = verifyCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(verifyCmd)
}
