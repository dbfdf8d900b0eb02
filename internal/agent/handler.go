package agent

import (
	"net/http"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/neurocosci/neuro-agent/internal/middleware"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	orchestrator *Orchestrator
}

func NewHandler(orchestrator *Orchestrator) *Handler {
	return &Handler{
		orchestrator: orchestrator,
	}
}

// Query handles POST /api/v1/query
func (h *Handler) Query(req *restful.Request, resp *restful.Response) {
	var queryRequest QueryRequest

	if err := req.ReadEntity(&queryRequest); err != nil {
		log.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	question := strings.TrimSpace(queryRequest.Question)
	if question == "" {
		middleware.HandleError(resp, middleware.ErrEmptyQuestion, http.StatusBadRequest)
		return
	}

	log.Info().Str("question", question).Msg("Process agent query")

	ctx := req.Request.Context()

	result, err := h.orchestrator.Run(ctx, question, func(hop int, tool string, args map[string]any) {
		log.Info().Int("hop", hop).Str("tool", tool).Interface("args", args).Msg("Agent tool call")
	})
	if err != nil {
		log.Error().Err(err).Msg("Agent run failed")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, result)
}

// Health handler GET API /api/v1/health
func (h *Handler) Health(req *restful.Request, resp *restful.Response) {
	healthResponse := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}

	resp.WriteHeaderAndEntity(http.StatusOK, healthResponse)
}
