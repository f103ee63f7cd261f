package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/bilgisen/khabar/internal/ai"
	"github.com/bilgisen/khabar/internal/api"
	"github.com/bilgisen/khabar/internal/apperr"
	"github.com/bilgisen/khabar/internal/auth"
	"github.com/bilgisen/khabar/internal/cache"
	"github.com/bilgisen/khabar/internal/config"
	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/media"
	"github.com/bilgisen/khabar/internal/models"
	"github.com/bilgisen/khabar/internal/storage"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *zerolog.Logger
	store   *storage.Store
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "khabar",
		Short: "Bilingual news CMS backend",
		Long: `Khabar serves the public news API and the admin CMS, and imports
stories from RSS feeds on a schedule.`,
		PersistentPreRunE:  initializeApp,
		PersistentPostRunE: closeApp,
		SilenceUsage:       true,
		RunE:               runServe,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: environment and .env only)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(syncCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initializeApp(cmd *cobra.Command, args []string) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: cfg.LogPretty,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log = logger.Get()

	store, err = storage.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func closeApp(cmd *cobra.Command, args []string) error {
	if store == nil {
		return nil
	}
	return store.Close()
}

func newAuthService() (*auth.Service, error) {
	return auth.NewService(store, auth.NewHasher(bcrypt.DefaultCost), auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL))
}

func newSyncer() (*feed.Syncer, cache.ProcessedSet, error) {
	seen, err := cache.New(cfg.RedisURL, cfg.RedisPrefix)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	fetcher := feed.NewFetcher(feed.FetcherConfig{
		Timeout:       cfg.FeedTimeout,
		Retries:       cfg.FeedRetries,
		RatePerSecond: cfg.FeedRatePerSecond,
		MaxBodyBytes:  cfg.FeedMaxBodyBytes,
	})
	syncer := feed.NewSyncer(store, fetcher, seen, feed.SyncerConfig{
		Concurrency: cfg.MaxConcurrency,
		SeenTTL:     cfg.CacheTTL,
	})
	if cfg.AIApiKey != "" {
		syncer.SetTranslator(ai.NewGeminiClient(cfg.AIApiKey, cfg.AIModel, cfg.AITimeout))
		log.Info().Str("model", cfg.AIModel).Msg("Hindi translation enabled")
	}
	return syncer, seen, nil
}

// newMediaStore picks R2 when credentials are configured and local disk
// otherwise. The returned directory is non-empty only for local storage.
func newMediaStore(ctx context.Context) (media.Store, string, error) {
	if cfg.R2Enabled() {
		s3, err := media.NewS3Store(ctx, media.S3Config{
			Endpoint:  cfg.R2Endpoint,
			AccountID: cfg.R2AccountID,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			PublicURL: cfg.R2PublicURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize R2 storage: %w", err)
		}
		log.Info().Str("bucket", cfg.R2Bucket).Msg("Uploads stored in R2")
		return s3, "", nil
	}

	local, err := media.NewLocalStore(cfg.StoragePath, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	log.Info().Str("dir", local.Dir()).Msg("Uploads stored on local disk")
	return local, local.Dir(), nil
}

// bootstrapAdmin creates the first manager from ADMIN_EMAIL and
// ADMIN_PASSWORD when no account exists yet.
func bootstrapAdmin(ctx context.Context, svc *auth.Service) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	n, err := store.CountAccounts(ctx)
	if err != nil || n > 0 {
		return err
	}
	hash, err := svc.HashPassword(ctx, cfg.AdminPassword)
	if err != nil {
		return err
	}
	acc := &models.Account{
		Username:     "admin",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         models.RoleManager,
		IsActive:     true,
	}
	if err := store.CreateAccount(ctx, acc); err != nil {
		return err
	}
	log.Info().Str("email", acc.Email).Msg("Bootstrap manager account created")
	return nil
}

// ============ SERVE ============

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the RSS scheduler",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	authSvc, err := newAuthService()
	if err != nil {
		return err
	}
	if err := bootstrapAdmin(ctx, authSvc); err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	syncer, seen, err := newSyncer()
	if err != nil {
		return err
	}
	defer func() {
		log.Info().Msg("Closing cache...")
		if err := seen.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing cache")
		}
	}()

	mediaStore, uploadDir, err := newMediaStore(ctx)
	if err != nil {
		return err
	}

	deps := api.Deps{
		Config:    cfg,
		Store:     store,
		Auth:      authSvc,
		Syncer:    syncer,
		Uploader:  media.NewUploader(mediaStore, cfg.MaxImageSize, cfg.MaxVideoSize),
		UploadDir: uploadDir,
	}

	if cfg.SchedulerEnabled {
		scheduler := feed.NewScheduler(syncer, store, store, cfg.PublishCheckInterval)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer scheduler.Stop()
		deps.Scheduler = scheduler
	}

	app := api.NewApp(deps)

	// Start server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
	return nil
}

// ============ MAINTENANCE ============

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			// initializeApp already migrated.
			log.Info().Str("dsn", cfg.DatabaseDSN).Msg("Database schema is up to date")
			return nil
		},
	}
}

func createAdminCmd() *cobra.Command {
	var email, username, password, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !models.Role(role).Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}
			svc, err := newAuthService()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			hash, err := svc.HashPassword(ctx, password)
			if err != nil {
				return err
			}
			acc := &models.Account{
				Username:     username,
				Email:        email,
				PasswordHash: hash,
				Role:         models.Role(role),
				IsActive:     true,
			}
			if err := store.CreateAccount(ctx, acc); err != nil {
				if apperr.Is(err, apperr.KindConflict) {
					return fmt.Errorf("an account with this email or username already exists")
				}
				return err
			}
			fmt.Printf("Created %s account %s (id %d)\n", acc.Role, acc.Email, acc.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(models.RoleManager), "manager, editor, limited_editor, subtitle_editor or viewer")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func syncCmd() *cobra.Command {
	var sourceID uint

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch RSS sources once and stage new entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer, seen, err := newSyncer()
			if err != nil {
				return err
			}
			defer seen.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			var results []feed.SyncResult
			if sourceID > 0 {
				res, err := syncer.SyncSource(ctx, sourceID)
				if res != nil {
					results = append(results, *res)
				}
				if err != nil && res == nil {
					return err
				}
			} else {
				results, err = syncer.SyncAll(ctx)
				if err != nil {
					return err
				}
			}

			for _, r := range results {
				if r.Error != "" {
					fmt.Printf("%-30s FAILED  %s\n", r.SourceName, r.Error)
					continue
				}
				fmt.Printf("%-30s fetched=%d imported=%d skipped=%d\n", r.SourceName, r.Fetched, r.ImportedCount, r.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().UintVar(&sourceID, "source", 0, "sync only this source id")
	return cmd
}
