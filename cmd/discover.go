package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/citation-audit/internal/discovery"
	"github.com/sells-group/citation-audit/internal/validate"
	"github.com/sells-group/citation-audit/pkg/perplexity"
	"github.com/sells-group/citation-audit/pkg/serper"
)

var (
	discoverBusiness businessFlags
	discoverMax      int
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover and validate candidate directories for a business",
	RunE: func(cmd *cobra.Command, args []string) error {
		business, err := discoverBusiness.load()
		if err != nil {
			return err
		}

		searchClient := serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
		researchClient := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model))

		d := discovery.New(researchClient, validate.New(searchClient))

		max := discoverMax
		if max <= 0 {
			max = cfg.Discovery.MaxDirectories
		}
		candidates := d.Discover(cmd.Context(), business, max)
		return printJSON(candidates)
	},
}

func init() {
	discoverBusiness.register(discoverCmd)
	discoverCmd.Flags().IntVar(&discoverMax, "max-directories", 0, "cap on directories returned (default from config)")
	rootCmd.AddCommand(discoverCmd)
}
