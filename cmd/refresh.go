package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/citation-audit/internal/model"
)

var (
	refreshBusiness businessFlags
	refreshDirName  string
	refreshDirURL   string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-run the full pipeline for one directory, replacing prior results",
	RunE: func(cmd *cobra.Command, args []string) error {
		business, err := refreshBusiness.load()
		if err != nil {
			return err
		}

		p, cleanup, err := buildPipeline()
		if err != nil {
			return err
		}
		defer cleanup()

		rec := p.Refresh(cmd.Context(), business, model.DirectoryCandidate{
			Name:   refreshDirName,
			URL:    refreshDirURL,
			Status: model.ValidationValidated,
		})
		return printJSON(rec)
	},
}

func init() {
	refreshBusiness.register(refreshCmd)
	refreshCmd.Flags().StringVar(&refreshDirName, "directory", "", "directory name (required)")
	refreshCmd.Flags().StringVar(&refreshDirURL, "directory-url", "", "directory URL (required)")
	_ = refreshCmd.MarkFlagRequired("directory")
	_ = refreshCmd.MarkFlagRequired("directory-url")
	rootCmd.AddCommand(refreshCmd)
}
