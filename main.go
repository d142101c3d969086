package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	actionsx "github.com/nimbushome/support-agent/agent/actions"
	contractx "github.com/nimbushome/support-agent/agent/contract"
	orchestratorx "github.com/nimbushome/support-agent/agent/orchestrator"
	promptctx "github.com/nimbushome/support-agent/agent/promptctx"
	sessionx "github.com/nimbushome/support-agent/agent/session"
	"github.com/nimbushome/support-agent/httpapi"
	configx "github.com/nimbushome/support-agent/pkg/config"
	generatorx "github.com/nimbushome/support-agent/pkg/generator"
	_ "github.com/nimbushome/support-agent/pkg/logger/autoload"
	openrouterx "github.com/nimbushome/support-agent/pkg/openrouter"
	memorystore "github.com/nimbushome/support-agent/store/memory"
	pgstore "github.com/nimbushome/support-agent/store/postgres"
)

type AppConfig struct {
	// Store selects the persistence backend: "postgres" or "memory".
	Store            string        `split_words:"true" default:"memory"`
	SeedDemo         bool          `split_words:"true" default:"true"`
	GeneratorTimeout time.Duration `split_words:"true" default:"30s"`
	ShutdownTimeout  time.Duration `split_words:"true" default:"10s"`
}

type tierLister interface {
	All(ctx context.Context) ([]contractx.Tier, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")

	var (
		customers contractx.CustomerRepository
		tiers     contractx.TierRepository
		turns     contractx.ConversationStore
		history   httpapi.ConversationReader
		lister    tierLister
	)

	switch appCfg.Store {
	case "postgres":
		pgCfg := configx.MustNew[pgstore.Config]("POSTGRES")
		db, err := pgstore.Connect(ctx, *pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres connect failed")
		}
		defer db.Close()
		if err := pgstore.Init(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("postgres init failed")
		}

		customerRepo := pgstore.NewCustomerRepo(db)
		tierRepo := pgstore.NewTierRepo(db)
		turnStore := pgstore.NewTurnStore(db)
		if appCfg.SeedDemo {
			if err := seedDemoData(ctx, customerRepo, tierRepo); err != nil {
				log.Fatal().Err(err).Msg("seeding failed")
			}
		}
		customers, tiers, turns, history, lister = customerRepo, tierRepo, turnStore, turnStore, tierRepo

	case "memory":
		customerRepo := memorystore.NewCustomerRepo()
		tierRepo := memorystore.NewTierRepo()
		turnStore := memorystore.NewTurnStore()
		if appCfg.SeedDemo {
			if err := seedDemoData(ctx, customerRepo, tierRepo); err != nil {
				log.Fatal().Err(err).Msg("seeding failed")
			}
		}
		customers, tiers, turns, history, lister = customerRepo, tierRepo, turnStore, turnStore, tierRepo

	default:
		log.Fatal().Str("store", appCfg.Store).Msg("unknown store backend")
	}

	tierCatalog, err := lister.All(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("loading tier catalog failed")
	}

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	if openrouterx.NewClient(*openRouterCfg) == nil {
		log.Fatal().Msg("openrouter client init failed, check OPENROUTER_API_KEY")
	}
	gen, err := generatorx.New(ctx, openRouterCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("generator init failed")
	}

	agent, err := orchestratorx.New(
		customers,
		tiers,
		turns,
		gen,
		actionsx.NewExecutor(log.Logger),
		promptctx.NewBuilder(tierCatalog),
		log.Logger,
		orchestratorx.Config{GeneratorTimeout: appCfg.GeneratorTimeout},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("orchestrator init failed")
	}

	httpCfg := configx.MustNew[httpapi.Config]("HTTP")
	sessCfg := configx.MustNew[sessionx.Config]("SESSION")
	server := &http.Server{
		Addr:    httpCfg.Addr,
		Handler: httpapi.NewRouter(agent, history, sessionx.NewManager(), *sessCfg, log.Logger),
	}

	go func() {
		log.Info().Str("addr", httpCfg.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}
