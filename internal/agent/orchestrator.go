package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/neurocosci/neuro-agent/internal/bedrock"
	"github.com/neurocosci/neuro-agent/internal/retrieval"
	"github.com/rs/zerolog/log"
)

// ModelClient is one tool-augmented model turn.
type ModelClient interface {
	InvokeWithTools(ctx context.Context, request bedrock.ToolRequest) (*bedrock.ToolTurn, error)
}

// EvidenceRetriever is the tool surface the orchestrator dispatches to.
type EvidenceRetriever interface {
	Retrieve(ctx context.Context, question string) (*retrieval.EvidenceBundle, error)
	LookupDrug(ctx context.Context, drugName string) (*retrieval.DrugMatches, error)
}

// ProgressFunc is an optional side-channel notification per tool call.
// It has no effect on control flow.
type ProgressFunc func(hop int, tool string, args map[string]any)

type Orchestrator struct {
	model     ModelClient
	retriever EvidenceRetriever
	maxTokens int
}

func NewOrchestrator(model ModelClient, retriever EvidenceRetriever, maxTokens int) *Orchestrator {
	if maxTokens == 0 {
		maxTokens = 2000
	}

	return &Orchestrator{
		model:     model,
		retriever: retriever,
		maxTokens: maxTokens,
	}
}

const (
	maxHops       = 5
	maxHopsAnswer = "Agent reached max hops."

	searchLiteratureTool = "search_literature"
	drugLookupTool       = "lookup_drug"
)

// ToolKind is the closed set of tools the agent can dispatch to.
type ToolKind int

const (
	ToolKindUnknown ToolKind = iota
	ToolKindSearchLiterature
	ToolKindDrugLookup
)

func toolKindFor(name string) ToolKind {
	switch name {
	case searchLiteratureTool:
		return ToolKindSearchLiterature
	case drugLookupTool:
		return ToolKindDrugLookup
	default:
		return ToolKindUnknown
	}
}

const systemInstruction = "You are a neuroscience research assistant. Answer by calling tools to retrieve real data. " +
	"Call multiple tools in sequence. Synthesize ALL documents returned and cite each PMID. " +
	"If low_confidence is true or documents don't address the question, say you don't have " +
	"sufficient evidence and suggest resources. Never fabricate. Always cite PMIDs."

// Phrases that mark a hedging final answer.
var hedgePhrases = []string{
	"don't have sufficient",
	"insufficient evidence",
	"cannot find",
	"i don't know",
}

func toolSpecs() []bedrock.ToolSpec {
	return []bedrock.ToolSpec{
		{
			Name: searchLiteratureTool,
			Description: "Semantically searches PubMed neurology literature using query expansion. " +
				"Returns up to 3 relevant papers. Use for mechanism questions, disease concepts, " +
				"open-ended queries. If low_confidence is true, acknowledge uncertainty.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{
						"type":        "string",
						"description": "The research question.",
					},
				},
				"required": []string{"question"},
			},
		},
		{
			Name: drugLookupTool,
			Description: "Looks up a specific drug in ChEMBL. Use when the user asks about a drug " +
				"name, IC50, or binding target.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"drug_name": map[string]any{
						"type":        "string",
						"description": "Drug name to search for.",
					},
				},
				"required": []string{"drug_name"},
			},
		},
	}
}

// Run drives the bounded multi-hop loop: model turn, tool dispatch, feed
// results back, until a text-only turn or the hop budget. The hop counter is
// the sole loop-termination authority besides the no-tool-call turn.
func (o *Orchestrator) Run(ctx context.Context, question string, onProgress ProgressFunc) (RunResult, error) {
	history := []bedrock.Message{bedrock.UserMessage(question)}
	trace := []TraceEntry{}
	cited := map[string]CitedPaper{}
	citedOrder := []string{}

	hops := 0
	for hops < maxHops {
		turn, err := o.model.InvokeWithTools(ctx, bedrock.ToolRequest{
			System:    systemInstruction,
			Tools:     toolSpecs(),
			Messages:  history,
			MaxTokens: o.maxTokens,
		})
		if err != nil {
			return RunResult{}, fmt.Errorf("model turn failed: %w", err)
		}

		if len(turn.ToolCalls) == 0 {
			answer := turn.Text
			return RunResult{
				Answer:        answer,
				Hops:          hops,
				LowConfidence: isHedging(answer),
				Trace:         trace,
				CitedPapers:   collectCited(cited, citedOrder),
			}, nil
		}

		history = append(history, bedrock.AssistantMessage(turn.Content))

		var toolResults []bedrock.ContentBlock
		for _, call := range turn.ToolCalls {
			payload, summary, documents := o.dispatch(ctx, call)

			for _, doc := range documents {
				if doc.PMID == "" {
					continue
				}
				// First-seen title wins; later hops must not overwrite.
				if _, ok := cited[doc.PMID]; !ok {
					cited[doc.PMID] = CitedPaper{PMID: doc.PMID, Title: doc.Title}
					citedOrder = append(citedOrder, doc.PMID)
				}
			}

			trace = append(trace, TraceEntry{
				Hop:           hops + 1,
				Tool:          call.Name,
				Args:          call.Args,
				ResultSummary: summary,
			})

			if onProgress != nil {
				onProgress(hops+1, call.Name, call.Args)
			}

			toolResults = append(toolResults, bedrock.ToolResultBlock(call.ID, payload))
		}

		history = append(history, bedrock.Message{Role: "user", Content: toolResults})
		hops++
	}

	log.Warn().Str("question", question).Msg("Agent exhausted hop budget")

	return RunResult{
		Answer:        maxHopsAnswer,
		Hops:          hops,
		LowConfidence: true,
		Trace:         trace,
		CitedPapers:   collectCited(cited, citedOrder),
	}, nil
}

// dispatch routes one tool call to its handler and returns the JSON payload
// to feed the model, the one-line trace summary, and any documents for
// citation tracking. Every failure mode becomes an error payload; the hop
// itself never fails.
func (o *Orchestrator) dispatch(ctx context.Context, call bedrock.ToolCall) (payload string, summary string, documents []retrieval.Document) {
	switch toolKindFor(call.Name) {
	case ToolKindSearchLiterature:
		question, ok := stringArg(call.Args, "question")
		if !ok {
			return errorResult("Missing argument: question")
		}

		bundle, err := o.retriever.Retrieve(ctx, question)
		if err != nil {
			return errorResult(err.Error())
		}

		return marshalResult(bundle), summarizeEvidence(bundle), bundle.Documents

	case ToolKindDrugLookup:
		drugName, ok := stringArg(call.Args, "drug_name")
		if !ok {
			return errorResult("Missing argument: drug_name")
		}

		matches, err := o.retriever.LookupDrug(ctx, drugName)
		if err != nil {
			return errorResult(err.Error())
		}

		return marshalResult(matches), summarizeDrug(matches), nil

	default:
		return errorResult(fmt.Sprintf("Unknown tool: %s", call.Name))
	}
}

func stringArg(args map[string]any, key string) (string, bool) {
	value, ok := args[key].(string)
	return value, ok
}

func errorResult(message string) (string, string, []retrieval.Document) {
	payload, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		payload = []byte(`{"error":"internal"}`)
	}
	return string(payload), "Error: " + message, nil
}

func marshalResult(result any) string {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal tool result")
		return `{"error":"internal"}`
	}
	return string(payload)
}

func summarizeEvidence(bundle *retrieval.EvidenceBundle) string {
	pmids := make([]string, 0, len(bundle.Documents))
	for _, doc := range bundle.Documents {
		pmids = append(pmids, doc.PMID)
	}

	return fmt.Sprintf("%d docs retrieved: PMIDs %s | conf=%s",
		len(bundle.Documents), strings.Join(pmids, ", "), truncate(bundle.ConfidenceNote, 30))
}

func summarizeDrug(matches *retrieval.DrugMatches) string {
	r := matches.Results[0]
	return fmt.Sprintf("%s → %s IC50=%s %s",
		r.DrugName, strOr(r.ProteinTarget, "unknown target"), floatOr(r.PotencyIC50), strOr(r.StandardUnits, ""))
}

func isHedging(answer string) bool {
	lowered := strings.ToLower(answer)
	for _, phrase := range hedgePhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func collectCited(cited map[string]CitedPaper, order []string) []CitedPaper {
	papers := make([]CitedPaper, 0, len(order))
	for _, pmid := range order {
		papers = append(papers, cited[pmid])
	}
	return papers
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

func strOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}

func floatOr(value *float64) string {
	if value == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*value, 'g', -1, 64)
}
