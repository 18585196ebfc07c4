package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/statelink/statelink-backend/internal/app/repository"
	"github.com/statelink/statelink-backend/internal/app/service"
	"github.com/statelink/statelink-backend/internal/db"
)

func importBusinessesCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import-businesses [xlsx_file]",
		Short: "Upsert the business registry from an XLSX export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			businesses, summary, err := service.ReadRegistryXLSX(f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rows: %d  valid: %d  skipped: %d  duplicate: %d\n",
				summary.TotalRows, summary.Valid, summary.Skipped, summary.Duplicate)
			if dryRun {
				return nil
			}

			businessService := service.NewBusinessService(repository.NewBusinessRepository(db.GetDB()))
			imported, err := businessService.Import(businesses)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "imported %d businesses\n", imported)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without writing")
	return cmd
}
