package main

import (
	"context"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/SNE-Labs/SNE-Radar/adapters/chain"
	"github.com/SNE-Labs/SNE-Radar/adapters/events"
	"github.com/SNE-Labs/SNE-Radar/adapters/store"
	"github.com/SNE-Labs/SNE-Radar/adapters/tiers"
	"github.com/SNE-Labs/SNE-Radar/adapters/tokenizer"
	"github.com/SNE-Labs/SNE-Radar/config"
	"github.com/SNE-Labs/SNE-Radar/internal/eth"
	"github.com/SNE-Labs/SNE-Radar/service"
	"github.com/SNE-Labs/SNE-Radar/transport/http"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "radar-auth").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Redis: nonces, tier cache, rate counters and the event stream.
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse Redis URL")
	}
	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	// Postgres: off-chain tier overrides.
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Postgres")
	}
	if err := tiers.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Blockchain RPC: signature verification and the license registry.
	rpcClient, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RPC endpoint")
	}
	if !common.IsHexAddress(cfg.LicenseContract) {
		log.Fatal().Str("address", cfg.LicenseContract).Msg("invalid license contract address")
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	kv := store.NewRedisStore(redisClient)
	verifier := eth.NewVerifier(rpcClient, cfg.RPCTimeout)
	registry := chain.NewLicenseRegistry(rpcClient, common.HexToAddress(cfg.LicenseContract), cfg.RPCTimeout)
	overrides := tiers.NewPostgresRepo(db)
	resolver := service.NewTierResolver(kv, registry, overrides, cfg.TierCacheTTL, log)
	limiter := service.NewRateLimiter(kv, cfg.RateWindow, log)
	sessionTokenizer := tokenizer.NewJWTTokenizer([]byte(cfg.JWTSecret))
	eventPub := events.NewWatermillPublisher(publisher)

	authService := service.NewAuthService(
		service.AuthConfig{
			Domain:        cfg.Domain,
			Origin:        cfg.Origin,
			ChainID:       cfg.ChainID,
			MaxMessageAge: cfg.MaxMessageAge,
			NonceTTL:      cfg.NonceTTL,
			SessionTTL:    cfg.SessionTTL,
		},
		kv, verifier, resolver, sessionTokenizer, eventPub, log,
	)

	handlers := http.NewAuthHandlers(
		authService,
		limiter,
		http.CookieConfig{
			Domain:   cfg.CookieDomain,
			SameSite: cfg.CookieSameSite(),
			MaxAge:   cfg.SessionTTL,
		},
		http.RateLimits{
			NonceWallet: cfg.NonceWalletLimit,
			LoginWallet: cfg.LoginWalletLimit,
		},
	)

	router := http.SetupRouter(handlers, authService, limiter, http.RouterConfig{
		NonceIPLimit: cfg.NonceIPLimit,
		LoginIPLimit: cfg.LoginIPLimit,
	}, log)

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting auth service")
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
