package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ephemera/internal/asset"
	"github.com/ephemera/internal/cms"
	"github.com/ephemera/internal/content"
	"github.com/ephemera/internal/db"
	"github.com/ephemera/internal/imageurl"
	"github.com/ephemera/internal/schema"
	"github.com/ephemera/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var mirrorAssets bool

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Copy the hosted dataset into the local database",
	Long: `Fetches every designer and record from the CMS and upserts them into the
local mirror database. Records the local store rejects are reported and
skipped. With --assets the original image files are downloaded as well.`,
	RunE: runMirror,
}

func init() {
	mirrorCmd.Flags().BoolVar(&mirrorAssets, "assets", true, "download image assets into ASSET_DIR")
	rootCmd.AddCommand(mirrorCmd)
}

// mirrorStats counts what a mirror run wrote.
type mirrorStats struct {
	Designers int
	Records   int
	Skipped   int
	Assets    int
}

func runMirror(cmd *cobra.Command, _ []string) error {
	if cfg.Sanity.ProjectID == "" {
		return fmt.Errorf("SANITY_PROJECT_ID is required to mirror")
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	var fetcher *assetFetcher
	if mirrorAssets {
		fetcher = &assetFetcher{
			images: imageurl.New(imageurl.Config{ProjectID: cfg.Sanity.ProjectID, Dataset: cfg.Sanity.Dataset}),
			dir:    imageDir(),
			http:   &http.Client{Timeout: time.Minute},
		}
	}

	stats, err := mirror(cmd.Context(), newCMSClient(), service.NewRecordService(db.DB), fetcher)
	if err != nil {
		return err
	}
	cmd.Printf("Mirrored %d designers and %d records (%d skipped, %d assets)\n",
		stats.Designers, stats.Records, stats.Skipped, stats.Assets)
	return nil
}

// mirror copies designers first so records can reference them.
func mirror(ctx context.Context, source cms.Source, store *service.RecordService, fetcher *assetFetcher) (mirrorStats, error) {
	var stats mirrorStats

	designerSlugs, err := source.Slugs(ctx, schema.DesignerType)
	if err != nil {
		return stats, fmt.Errorf("list designers: %w", err)
	}
	for _, slug := range designerSlugs {
		designer, err := source.Designer(ctx, slug)
		if err != nil {
			return stats, fmt.Errorf("fetch designer %s: %w", slug, err)
		}
		if designer.Slug == "" {
			continue
		}
		designer.Records = nil
		if err := store.SaveDesigner(ctx, designer); err != nil {
			return stats, fmt.Errorf("save designer %s: %w", slug, err)
		}
		stats.Designers++
		stats.Assets += fetcher.fetchBlocks(ctx, designer.Bio)
	}

	recordSlugs, err := source.Slugs(ctx, schema.RecordType)
	if err != nil {
		return stats, fmt.Errorf("list records: %w", err)
	}
	for _, slug := range recordSlugs {
		rec, err := source.Record(ctx, slug)
		if err != nil {
			return stats, fmt.Errorf("fetch record %s: %w", slug, err)
		}
		if _, err := store.Save(ctx, rec); err != nil {
			logrus.WithError(err).WithField("slug", slug).Warn("skipping record")
			stats.Skipped++
			continue
		}
		stats.Records++

		if rec.MainImage != nil {
			stats.Assets += fetcher.fetch(ctx, *rec.MainImage)
		}
		for _, img := range rec.Images {
			stats.Assets += fetcher.fetch(ctx, img)
		}
		stats.Assets += fetcher.fetchBlocks(ctx, rec.Notes)
	}
	return stats, nil
}

// assetFetcher downloads original image files. A nil fetcher does nothing.
type assetFetcher struct {
	images imageurl.Source
	dir    string
	http   *http.Client
}

func (f *assetFetcher) fetchBlocks(ctx context.Context, blocks []content.Block) int {
	n := 0
	for _, block := range blocks {
		if block.Type == "image" {
			n += f.fetch(ctx, block.Image())
		}
	}
	return n
}

// fetch returns 1 when a new file was written. Failures are logged, not fatal.
func (f *assetFetcher) fetch(ctx context.Context, img content.Image) int {
	if f == nil || img.AssetRef() == "" {
		return 0
	}
	ref, err := asset.ParseRef(img.AssetRef())
	if err != nil {
		return 0
	}
	dest := filepath.Join(f.dir, ref.FileName())
	if _, err := os.Stat(dest); err == nil {
		return 0
	}

	if err := f.download(ctx, f.images.Ref(ref.String()).String(), dest); err != nil {
		logrus.WithError(err).WithField("asset", ref.String()).Warn("asset download failed")
		return 0
	}
	return 1
}

func (f *assetFetcher) download(ctx context.Context, src, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.dir, ".download-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
