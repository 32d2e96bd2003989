package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/internal/resolve"
	"github.com/sells-group/citation-audit/pkg/serper"
)

var (
	resolveBusiness businessFlags
	resolveDirName  string
	resolveDirURL   string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the business's profile URL on one directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		business, err := resolveBusiness.load()
		if err != nil {
			return err
		}

		reg, err := buildRegistry()
		if err != nil {
			return err
		}
		fetcher, cleanup, err := buildFetcher()
		if err != nil {
			return err
		}
		defer cleanup()

		searchClient := serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
		r := resolve.New(searchClient, fetcher, reg)

		prof, err := r.Resolve(cmd.Context(), business, model.DirectoryCandidate{
			Name:   resolveDirName,
			URL:    resolveDirURL,
			Status: model.ValidationValidated,
		})
		if err != nil {
			return err
		}
		return printJSON(prof)
	},
}

func init() {
	resolveBusiness.register(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveDirName, "directory", "", "directory name, e.g. \"Yelp\" (required)")
	resolveCmd.Flags().StringVar(&resolveDirURL, "directory-url", "", "directory URL, e.g. https://www.yelp.com (required)")
	_ = resolveCmd.MarkFlagRequired("directory")
	_ = resolveCmd.MarkFlagRequired("directory-url")
	rootCmd.AddCommand(resolveCmd)
}
