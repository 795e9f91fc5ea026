package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/weddinggallery/internal/config"
	"github.com/weddinggallery/internal/db"
	"github.com/weddinggallery/internal/imagehost"
	"github.com/weddinggallery/internal/logger"
	"github.com/weddinggallery/internal/service"
)

type migrationEnv struct {
	svc   *service.MigrationService
	close func()
}

func openMigrationEnv(cmd *cobra.Command) (*migrationEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dsn, _ := cmd.Flags().GetString("database-url"); strings.TrimSpace(dsn) != "" {
		cfg.DatabaseURL = strings.TrimSpace(dsn)
	}
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	gdb, err := db.Open(cfg.DatabaseURL, db.Options{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	log := logger.New(cfg)
	uploader := imagehost.NewImgBBClient(cfg.ImageHostUploadURL, cfg.ImageHostTimeout)
	return &migrationEnv{
		svc:   service.NewMigrationService(gdb, uploader, cfg.MigrationBatchSize, log),
		close: func() { db.Close(gdb) },
	}, nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show photos that still lack CDN copies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openMigrationEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			pending, err := env.svc.ListPending(cmd.Context())
			if err != nil {
				return err
			}
			printPending(cmd.OutOrStdout(), pending)
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var (
		apiKey string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Upload pending photos one by one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(apiKey) == "" {
				apiKey = os.Getenv("IMAGE_HOST_API_KEY")
			}
			if strings.TrimSpace(apiKey) == "" {
				return fmt.Errorf("--api-key or IMAGE_HOST_API_KEY is required")
			}

			env, err := openMigrationEnv(cmd)
			if err != nil {
				return err
			}
			defer env.close()

			return runMigration(cmd.Context(), cmd.OutOrStdout(), env.svc, strings.TrimSpace(apiKey), limit)
		},
	}
	cmd.Flags().StringVar(&apiKey, "api-key", "", "image host API key (defaults to IMAGE_HOST_API_KEY)")
	cmd.Flags().IntVar(&limit, "limit", 0, "stop after this many photos (0 = all)")
	return cmd
}

func runMigration(ctx context.Context, out io.Writer, svc *service.MigrationService, apiKey string, limit int) error {
	failed := 0
	n, err := svc.MigrateAll(ctx, apiKey, limit, func(r service.MigrationResult) {
		if !r.Succeeded() {
			failed++
		}
		fmt.Fprintf(out, "photo %d: full=%s thumbnail=%s\n", r.PhotoID, describe(r.Full), describe(r.Thumbnail))
	})
	fmt.Fprintf(out, "processed %d photos, %d with failures\n", n, failed)
	return err
}

func describe(o service.FieldOutcome) string {
	switch o.Status {
	case service.UploadStatusUploaded:
		return "uploaded(" + *o.URL + ")"
	case service.UploadStatusFailed:
		return "failed(" + o.Error + ")"
	default:
		return o.Status
	}
}

func printPending(out io.Writer, pending []service.PendingPhoto) {
	fmt.Fprintf(out, "%d pending photos\n", len(pending))
	for _, p := range pending {
		fmt.Fprintf(out, "%6d  url=%d chars  thumbnail=%d chars  cdn_full=%t  cdn_thumb=%t  %s\n",
			p.ID, p.URLSize, p.ThumbnailSize, p.CDNFullURL != nil, p.CDNThumbnailURL != nil, p.Alt)
	}
}
