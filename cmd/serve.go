package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/assistant"
	"github.com/zasai/zas-translate/config"
	"github.com/zasai/zas-translate/controllers"
	"github.com/zasai/zas-translate/global"
	"github.com/zasai/zas-translate/log"
	"github.com/zasai/zas-translate/middlewares"
	"github.com/zasai/zas-translate/repository"
	"github.com/zasai/zas-translate/router"
	"github.com/zasai/zas-translate/translator"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx)
		},
	}
}

// openStores connects the database and redis and publishes them in global.
func openStores(cfg *config.Config) error {
	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	if err := config.RunMigrations(db); err != nil {
		return err
	}
	global.DB = db
	global.RedisDB = config.OpenRedis(cfg)
	return nil
}

func newEngine(ctx context.Context, cfg *config.Config) (*translator.Engine, *translator.Chain, error) {
	chain, err := translator.NewChainFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if len(chain.Names()) == 0 {
		log.L().Warn("no translation provider has credentials, /api/translate will fail")
	}
	cache, err := translator.NewCacheFromConfig(cfg, global.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	engine := translator.NewEngine(chain, cache, translator.Options{
		BatchSize:     cfg.Translation.BatchSize,
		MaxConcurrent: cfg.Translation.MaxConcurrent,
	})
	return engine, chain, nil
}

func runServe(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()
	log.L().Info("starting", zap.String("app", cfg.App.Name), zap.String("version", config.Version))

	if err := openStores(cfg); err != nil {
		return err
	}

	engine, chain, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer chain.Close()

	proxy := assistant.NewProxy(assistant.SettingsFromConfig(cfg), nil)
	if !proxy.Configured() {
		log.L().Warn("CEREBRAS_API_KEY is not set, the assistant will answer 500")
	}

	monitor := log.NewMonitor(time.Hour)
	monitor.StartMonitor()
	defer monitor.StopMonitor()

	users := repository.NewUserRepository(global.DB, config.UserCache())
	h := controllers.NewHandler(controllers.Deps{
		Users:    users,
		Profiles: repository.NewProfileRepository(global.DB),
		History:  repository.NewHistoryRepository(global.DB),
		Engine:   engine,
		Proxy:    proxy,
		Monitor:  monitor,
	})

	limiter := middlewares.NewRateLimiter(cfg.Assistant.RatePerMinute, cfg.Assistant.RateBurst)
	go limiter.RunSweeper(ctx, 5*time.Minute, 10*time.Minute)

	if cfg.App.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := router.SetupRouter(h, users, router.Options{
		AssistantLimiter: limiter,
		Swagger:          !cfg.App.Production,
	})

	srv := &http.Server{
		Addr:              config.GetPort(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.L().Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
