package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/citation-audit/internal/model"
	"github.com/sells-group/citation-audit/internal/report"
	"github.com/sells-group/citation-audit/internal/store"
)

var (
	auditBusiness businessFlags
	auditMaxDirs  int
	auditXLSX     string
	auditJSONL    string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the full citation audit for one business",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		business, err := auditBusiness.load()
		if err != nil {
			return err
		}

		p, cleanup, err := buildPipeline()
		if err != nil {
			return err
		}
		defer cleanup()

		jsonlPath := auditJSONL
		if jsonlPath == "" {
			jsonlPath = cfg.Output.JSONLPath
		}
		st, err := store.OpenJSONL(jsonlPath)
		if err != nil {
			return err
		}
		defer st.Close()

		maxDirs := auditMaxDirs
		if maxDirs <= 0 {
			maxDirs = cfg.Discovery.MaxDirectories
		}

		var records []model.CitationRecord
		summary := model.AuditSummary{Business: business.Name}
		for rec := range p.Run(ctx, business, maxDirs) {
			if summary.AuditID == "" {
				summary.AuditID = rec.AuditID
			}
			records = append(records, rec)
			summary.Observe(rec)
			if err := st.SaveRecord(ctx, rec); err != nil {
				zap.L().Warn("save record", zap.String("directory", rec.Directory.Name), zap.Error(err))
			}
		}
		if err := st.SaveSummary(ctx, summary); err != nil {
			zap.L().Warn("save summary", zap.Error(err))
		}

		xlsxPath := auditXLSX
		if xlsxPath == "" {
			xlsxPath = cfg.Output.XLSXPath
		}
		if xlsxPath != "" {
			if err := report.WriteXLSX(xlsxPath, records, summary); err != nil {
				return eris.Wrap(err, "write workbook")
			}
			zap.L().Info("workbook written", zap.String("path", xlsxPath))
		}

		fmt.Print(report.FormatConsole(business, records, summary))
		return nil
	},
}

func init() {
	auditBusiness.register(auditCmd)
	auditCmd.Flags().IntVar(&auditMaxDirs, "max-directories", 0, "cap on directories audited (default from config)")
	auditCmd.Flags().StringVar(&auditXLSX, "xlsx", "", "write an XLSX workbook to this path")
	auditCmd.Flags().StringVar(&auditJSONL, "jsonl", "", "write JSONL records to this path (default from config)")
	rootCmd.AddCommand(auditCmd)
}
