package main

import (
	"github.com/spf13/cobra"
)

var (
	verifyBusiness businessFlags
	verifyURL      string
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fetch one profile URL and verify its NAP data",
	RunE: func(cmd *cobra.Command, args []string) error {
		business, err := verifyBusiness.load()
		if err != nil {
			return err
		}

		p, cleanup, err := buildPipeline()
		if err != nil {
			return err
		}
		defer cleanup()

		// The pipeline stage maps dead links and blocks to results
		// rather than command errors, matching full-audit output.
		return printJSON(p.Verify(cmd.Context(), business, verifyURL))
	},
}

func init() {
	verifyBusiness.register(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyURL, "url", "", "profile URL to verify (required)")
	_ = verifyCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(verifyCmd)
}
