package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/joho/godotenv"
	"github.com/neurocosci/neuro-agent/internal/agent"
	"github.com/neurocosci/neuro-agent/internal/eval"
	"github.com/neurocosci/neuro-agent/internal/library"
	"github.com/neurocosci/neuro-agent/internal/middleware"
	"github.com/neurocosci/neuro-agent/internal/setup"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Neuro Co-Scientist API",
			Description: "Tool-augmented neuroscience research agent",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "query", Description: "Agent queries"}},
		{TagProps: spec.TagProps{Name: "eval", Description: "Evaluation harness"}},
		{TagProps: spec.TagProps{Name: "library", Description: "Saved-paper library"}},
	}
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting Neuro Co-Scientist API Server")

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx := context.Background()
	cfg := setup.LoadConfig()

	deps, err := setup.Wire(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer deps.Close()

	log.Info().
		Str("region", cfg.AWSRegion).
		Str("model", cfg.ClaudeModelID).
		Msg("Bedrock client initialized")

	agentHandler := agent.NewHandler(deps.Orchestrator)
	evalHandler := eval.NewHandler(deps.EvalRunner)
	libraryHandler := library.NewHandler(deps.Library)

	container := restful.NewContainer()

	// Add filters
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)

	// register API
	agent.RegisterRoutes(container, agentHandler)
	eval.RegisterRoutes(container, evalHandler)
	library.RegisterRoutes(container, libraryHandler)

	config := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/api/v1/openapi.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}

	container.Add(restfulspec.NewOpenAPIService(config))

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("address", addr).Msg("Starting server")

	server := http.Server{
		Addr:        addr,
		Handler:     corsHandler.Handler(container),
		ReadTimeout: 15 * time.Second,
		// Batch eval runs replay the whole bank through Bedrock and can
		// take minutes.
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
