package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/statelink/statelink-backend/internal/app/service"
	"github.com/statelink/statelink-backend/internal/storage"
)

func exportCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload paid orders in a date range to S3 as XLSX",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			end, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}

			objects := storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
			exportService := service.NewExportService(requestRepo(), objects, cfg.S3.ExportPrefix)

			// --to is inclusive
			result, err := exportService.ExportPaidOrders(cmd.Context(), start, end.AddDate(0, 0, 1))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "exported %d paid orders to s3://%s/%s\n", result.Rows, cfg.S3.Bucket, result.Key)
			fmt.Fprintln(out, result.DownloadURL)
			return nil
		},
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	cmd.Flags().StringVar(&from, "from", yesterday, "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", yesterday, "last day, YYYY-MM-DD")
	return cmd
}
