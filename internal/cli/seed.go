package cli

import (
	"fmt"

	"github.com/ephemera/internal/db"
	"github.com/ephemera/internal/fixture"
	"github.com/ephemera/internal/service"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>...",
	Short: "Load YAML fixtures into the local database",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store := service.NewRecordService(db.DB)
	loader := fixture.Loader{AssetDir: imageDir()}

	for _, path := range args {
		set, err := loader.Load(path)
		if err != nil {
			return err
		}
		for _, designer := range set.Designers {
			if err := store.SaveDesigner(cmd.Context(), designer); err != nil {
				return fmt.Errorf("%s: designer %s: %w", path, designer.Slug, err)
			}
		}
		for _, rec := range set.Records {
			if _, err := store.Save(cmd.Context(), rec); err != nil {
				return fmt.Errorf("%s: record %s: %w", path, rec.Slug, err)
			}
		}
		cmd.Printf("Seeded %d designers and %d records from %s\n", len(set.Designers), len(set.Records), path)
	}
	return nil
}
