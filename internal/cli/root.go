// Package cli wires the ephemera commands.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ephemera/internal/cms"
	"github.com/ephemera/internal/config"
	"github.com/ephemera/internal/db"
	"github.com/ephemera/internal/imageurl"
	"github.com/ephemera/internal/logging"
	"github.com/ephemera/internal/service"
	"github.com/ephemera/internal/view"
	"github.com/spf13/cobra"
)

// localProject names the image path of a mirror without a CMS project.
const localProject = "local"

var ErrUnknownSource = errors.New("unknown content source")

var (
	cfg          config.AppConfig
	sourceFlag   string
	databaseFlag string
)

var rootCmd = &cobra.Command{
	Use:           "ephemera",
	Short:         "Static archive of printed ephemera",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = config.Load()
		logging.Setup(cfg.LogLevel, cfg.LogFormat)

		if sourceFlag != "" {
			cfg.Source = strings.ToLower(sourceFlag)
		}
		if databaseFlag != "" {
			cfg.DatabasePath = databaseFlag
		}
		if cfg.Source != config.SourceCMS && cfg.Source != config.SourceLocal {
			return fmt.Errorf("%w: %q", ErrUnknownSource, cfg.Source)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "content source: cms or local (overrides CONTENT_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&databaseFlag, "db", "", "path of the local mirror database (overrides DATABASE_PATH)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func newCMSClient() *cms.HTTPClient {
	return cms.NewHTTPClient(cms.ClientConfig{
		ProjectID:  cfg.Sanity.ProjectID,
		Dataset:    cfg.Sanity.Dataset,
		APIVersion: cfg.Sanity.APIVersion,
		Token:      cfg.Sanity.Token,
		UseCDN:     cfg.Sanity.UseCDN,
		RateLimit:  cfg.Sanity.RateLimit,
	})
}

// openSource returns the configured content source and a func releasing it.
func openSource() (cms.Source, func(), error) {
	if cfg.Source == config.SourceLocal {
		if err := db.Init(cfg.DatabasePath); err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return service.NewRecordService(db.DB), func() { _ = db.Close() }, nil
	}
	if cfg.Sanity.ProjectID == "" {
		return nil, nil, errors.New("SANITY_PROJECT_ID is required for the cms source")
	}
	return newCMSClient(), func() {}, nil
}

func imageConfig() imageurl.Config {
	project := cfg.Sanity.ProjectID
	if project == "" {
		project = localProject
	}
	return imageurl.Config{ProjectID: project, Dataset: cfg.Sanity.Dataset, BaseURL: cfg.ImagesBase()}
}

// imageDir is where local assets live, laid out the way image URLs address them.
func imageDir() string {
	ic := imageConfig()
	return filepath.Join(cfg.AssetDir, ic.ProjectID, ic.Dataset)
}

func newViews() (*view.Views, error) {
	return view.New(view.Config{
		SiteName: cfg.SiteName,
		BaseURL:  cfg.SiteBaseURL,
		Images:   imageurl.New(imageConfig()),
	})
}
