package cli

import (
	"path/filepath"

	"github.com/ephemera/internal/build"
	"github.com/ephemera/internal/config"
	"github.com/ephemera/internal/publish"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	buildOut     string
	buildPublish bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the whole site to static files",
	Long: `Renders every published item, the listing, designer pages and the
not-found page into the output directory. With --publish the result is
uploaded to the configured bucket.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "", "output directory (overrides BUILD_OUTPUT_DIR)")
	buildCmd.Flags().BoolVar(&buildPublish, "publish", false, "upload the output to the publish bucket")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	out := cfg.OutputDir
	if buildOut != "" {
		out = buildOut
	}

	source, release, err := openSource()
	if err != nil {
		return err
	}
	defer release()

	views, err := newViews()
	if err != nil {
		return err
	}

	builder := build.New(source, views, out)
	if cfg.Source == config.SourceLocal {
		ic := imageConfig()
		builder.WithAssets(imageDir(), filepath.Join("images", ic.ProjectID, ic.Dataset))
	}
	result, err := builder.Build(cmd.Context())
	if err != nil {
		return err
	}
	for _, slug := range result.Skipped {
		logrus.WithField("slug", slug).Warn("not built")
	}
	cmd.Printf("Built %d items, %d designers, %d files into %s\n", result.Items, result.Designers, result.Files, out)

	if !buildPublish {
		return nil
	}
	store, err := publish.NewMinIO(cmd.Context(), cfg.Publish)
	if err != nil {
		return err
	}
	n, err := publish.Publish(cmd.Context(), store, out, cfg.Publish.Prefix)
	if err != nil {
		return err
	}
	cmd.Printf("Published %d files to %s\n", n, cfg.Publish.Bucket)
	return nil
}
