package eval

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/neurocosci/neuro-agent/internal/middleware"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	runner *Runner
}

func NewHandler(runner *Runner) *Handler {
	return &Handler{
		runner: runner,
	}
}

// ListQuestions handles GET /api/v1/eval/questions
func (h *Handler) ListQuestions(req *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, h.runner.Bank().Questions())
}

// RunBatch handles POST /api/v1/eval/run
func (h *Handler) RunBatch(req *restful.Request, resp *restful.Response) {
	var batchRequest RunBatchRequest

	if err := req.ReadEntity(&batchRequest); err != nil {
		log.Error().Err(err).Msg("Failed to parse request body")
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	delay := time.Duration(batchRequest.DelaySeconds * float64(time.Second))

	log.Info().
		Strs("categories", batchRequest.Categories).
		Dur("delay", delay).
		Msg("Starting evaluation batch")

	ctx := req.Request.Context()
	batch := h.runner.RunBatch(ctx, batchRequest.Categories, delay)

	log.Info().
		Int("passed", batch.Overall.Passed).
		Int("total", batch.Overall.Total).
		Float64("pct", batch.Overall.Pct).
		Bool("meets_bar", batch.Overall.MeetsBar).
		Msg("Evaluation batch complete")

	resp.WriteHeaderAndEntity(http.StatusOK, batch)
}

// RunSingle handles GET /api/v1/eval/questions/{id}/run
func (h *Handler) RunSingle(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("id")

	ctx := req.Request.Context()
	row, ok := h.runner.RunSingle(ctx, id)
	if !ok {
		middleware.HandleError(resp, middleware.ErrUnknownEvalID, http.StatusNotFound)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, row)
}
