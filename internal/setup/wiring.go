package setup

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/neurocosci/neuro-agent/internal/agent"
	"github.com/neurocosci/neuro-agent/internal/bedrock"
	"github.com/neurocosci/neuro-agent/internal/database"
	"github.com/neurocosci/neuro-agent/internal/embedding"
	"github.com/neurocosci/neuro-agent/internal/eval"
	"github.com/neurocosci/neuro-agent/internal/expansion"
	"github.com/neurocosci/neuro-agent/internal/library"
	"github.com/neurocosci/neuro-agent/internal/redis"
	"github.com/neurocosci/neuro-agent/internal/retrieval"
)

type Dependencies struct {
	Orchestrator *agent.Orchestrator
	EvalRunner   *eval.Runner
	Library      *library.Store
	DB           *database.DB
	Redis        *goredis.Client
}

// Wire builds the full dependency graph: two Bedrock clients (agent and
// query expansion), the Titan embedder, Postgres, Redis, and the packages
// layered on top of them.
func Wire(ctx context.Context, cfg *Config) (*Dependencies, error) {
	bedrockClient, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}

	expanderClient, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ExpanderModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create expander Bedrock client: %w", err)
	}

	embedder, err := embedding.NewBedrockEmbedder(ctx, cfg.AWSRegion, cfg.EmbedModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	db, err := database.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	redisClient, err := redis.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	bundleCache := retrieval.NewRedisBundleCache(redisClient, "evidence_cache:", cfg.RedisTTL)
	expander := expansion.NewExpander(expanderClient)
	retrievalService := retrieval.NewService(expander, embedder, db, bundleCache)
	orchestrator := agent.NewOrchestrator(bedrockClient, retrievalService, cfg.AgentMaxTokens)

	bank, err := eval.LoadBank(cfg.QuestionBankPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}
	runner := eval.NewRunner(orchestrator, bank, cfg.EvalDelay)

	return &Dependencies{
		Orchestrator: orchestrator,
		EvalRunner:   runner,
		Library:      library.NewStore(cfg.LibraryPath),
		DB:           db,
		Redis:        redisClient,
	}, nil
}

func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
}
