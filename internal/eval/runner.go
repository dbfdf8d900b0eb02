package eval

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/neurocosci/neuro-agent/internal/agent"
	"github.com/rs/zerolog/log"
)

// AgentRunner is the agent entry point the harness replays questions through.
type AgentRunner interface {
	Run(ctx context.Context, question string, onProgress agent.ProgressFunc) (agent.RunResult, error)
}

// Passing at least this percentage of the bank meets the quality bar.
const qualityBarPct = 70.0

type Runner struct {
	agent        AgentRunner
	bank         *Bank
	defaultDelay time.Duration
}

func NewRunner(agentRunner AgentRunner, bank *Bank, defaultDelay time.Duration) *Runner {
	return &Runner{
		agent:        agentRunner,
		bank:         bank,
		defaultDelay: defaultDelay,
	}
}

func (r *Runner) Bank() *Bank {
	return r.bank
}

// RunBatch replays every question of the requested categories through the
// agent and aggregates pass rates. A nil category list means all categories;
// unknown category names are silently skipped. One question failing never
// aborts the batch. The delay between questions is a rate-limit courtesy to
// the generation service; zero means the runner's default.
func (r *Runner) RunBatch(ctx context.Context, categories []string, delay time.Duration) BatchResult {
	if categories == nil {
		categories = r.bank.Categories()
	}
	if delay == 0 {
		delay = r.defaultDelay
	}

	batch := BatchResult{
		Results:     []QuestionResult{},
		PerCategory: map[string]CategorySummary{},
	}

	first := true
	for _, category := range categories {
		for _, question := range r.bank.ByCategory(category) {
			if !first {
				time.Sleep(delay)
			}
			first = false

			row := r.runOne(ctx, question)
			batch.Results = append(batch.Results, row)

			summary := batch.PerCategory[category]
			summary.Total++
			if row.Score.Pass {
				summary.Passed++
			}
			batch.PerCategory[category] = summary

			batch.Overall.Total++
			if row.Score.Pass {
				batch.Overall.Passed++
			}

			log.Info().
				Str("id", question.ID).
				Str("category", category).
				Bool("pass", row.Score.Pass).
				Float64("coverage", row.Score.Coverage).
				Msg("Question evaluated")
		}
	}

	for category, summary := range batch.PerCategory {
		summary.Pct = percentage(summary.Passed, summary.Total)
		batch.PerCategory[category] = summary
	}

	batch.Overall.Pct = percentage(batch.Overall.Passed, batch.Overall.Total)
	batch.Overall.MeetsBar = batch.Overall.Pct >= qualityBarPct

	return batch
}

// RunSingle runs one bank question by id.
func (r *Runner) RunSingle(ctx context.Context, id string) (QuestionResult, bool) {
	question, ok := r.bank.ByID(id)
	if !ok {
		return QuestionResult{}, false
	}
	return r.runOne(ctx, question), true
}

// runOne scopes any failure, panics included, to this question's row.
func (r *Runner) runOne(ctx context.Context, question EvalQuestion) (row QuestionResult) {
	row = QuestionResult{
		ID:       question.ID,
		Question: question.Question,
		Category: question.Category,
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("id", question.ID).Msg("Agent run panicked")
			row = failingRow(question, fmt.Sprintf("panic: %v", rec))
		}
	}()

	result, err := r.agent.Run(ctx, question.Question, nil)
	if err != nil {
		log.Warn().Err(err).Str("id", question.ID).Msg("Agent run failed")
		return failingRow(question, err.Error())
	}

	row.Answer = result.Answer
	row.Hops = result.Hops
	row.LowConfidence = result.LowConfidence
	row.Score = Score(result.Answer, question.ExpectedConcepts)

	return row
}

func failingRow(question EvalQuestion, message string) QuestionResult {
	return QuestionResult{
		ID:       question.ID,
		Question: question.Question,
		Category: question.Category,
		Error:    message,
		Score: ScoreResult{
			Hits:   []string{},
			Missed: append([]string{}, question.ExpectedConcepts...),
		},
	}
}

func percentage(passed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(passed)/float64(total)*10000) / 100
}
