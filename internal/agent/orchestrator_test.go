package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/neurocosci/neuro-agent/internal/bedrock"
	"github.com/neurocosci/neuro-agent/internal/database"
	"github.com/neurocosci/neuro-agent/internal/retrieval"
)

type scriptedModel struct {
	turns    []*bedrock.ToolTurn
	requests []bedrock.ToolRequest
}

func (m *scriptedModel) InvokeWithTools(ctx context.Context, request bedrock.ToolRequest) (*bedrock.ToolTurn, error) {
	m.requests = append(m.requests, request)
	turn := m.turns[0]
	if len(m.turns) > 1 {
		m.turns = m.turns[1:]
	}
	return turn, nil
}

type fakeRetriever struct {
	bundles     []*retrieval.EvidenceBundle
	bundleErr   error
	matches     *retrieval.DrugMatches
	lookupErr   error
	questions   []string
	drugQueries []string
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string) (*retrieval.EvidenceBundle, error) {
	f.questions = append(f.questions, question)
	if f.bundleErr != nil {
		return nil, f.bundleErr
	}
	bundle := f.bundles[0]
	if len(f.bundles) > 1 {
		f.bundles = f.bundles[1:]
	}
	return bundle, nil
}

func (f *fakeRetriever) LookupDrug(ctx context.Context, drugName string) (*retrieval.DrugMatches, error) {
	f.drugQueries = append(f.drugQueries, drugName)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.matches, nil
}

func textTurn(text string) *bedrock.ToolTurn {
	return &bedrock.ToolTurn{
		Content:    []bedrock.ContentBlock{{Type: "text", Text: text}},
		Text:       text,
		StopReason: "end_turn",
	}
}

func searchTurn(id, question string) *bedrock.ToolTurn {
	return &bedrock.ToolTurn{
		Content:    []bedrock.ContentBlock{{Type: "tool_use", ID: id, Name: searchLiteratureTool}},
		ToolCalls:  []bedrock.ToolCall{{ID: id, Name: searchLiteratureTool, Args: map[string]any{"question": question}}},
		StopReason: "tool_use",
	}
}

func bundleWith(docs ...retrieval.Document) *retrieval.EvidenceBundle {
	return &retrieval.EvidenceBundle{
		Documents:      docs,
		NumDocsFound:   len(docs),
		BestSimilarity: 0.4,
		ConfidenceNote: "Good confidence: Documents appear relevant.",
	}
}

func TestRun_TextOnlyTurnIsTerminal(t *testing.T) {
	model := &scriptedModel{turns: []*bedrock.ToolTurn{textTurn("Donepezil inhibits acetylcholinesterase (PMID 123).")}}
	orchestrator := NewOrchestrator(model, &fakeRetriever{}, 0)

	result, err := orchestrator.Run(context.Background(), "How does donepezil work?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Hops != 0 {
		t.Errorf("Hops = %d, want 0", result.Hops)
	}
	if result.LowConfidence {
		t.Error("a direct answer must not be low confidence")
	}
	if len(result.Trace) != 0 || len(result.CitedPapers) != 0 {
		t.Errorf("expected empty trace and citations, got %v / %v", result.Trace, result.CitedPapers)
	}
}

func TestRun_HedgingAnswerIsLowConfidence(t *testing.T) {
	tests := []struct {
		answer  string
		wantLow bool
	}{
		{"I DON'T KNOW the answer to that.", true},
		{"There is Insufficient Evidence for this claim.", true},
		{"I cannot find any supporting studies.", true},
		{"I don't have sufficient evidence to answer.", true},
		{"Donepezil is a selective AChE inhibitor.", false},
	}

	for _, test := range tests {
		model := &scriptedModel{turns: []*bedrock.ToolTurn{textTurn(test.answer)}}
		orchestrator := NewOrchestrator(model, &fakeRetriever{}, 0)

		result, err := orchestrator.Run(context.Background(), "q", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.LowConfidence != test.wantLow {
			t.Errorf("answer %q: LowConfidence = %v, want %v", test.answer, result.LowConfidence, test.wantLow)
		}
	}
}

func TestRun_ToolHopThenAnswer(t *testing.T) {
	model := &scriptedModel{turns: []*bedrock.ToolTurn{
		searchTurn("tu_1", "donepezil mechanism"),
		textTurn("Donepezil inhibits AChE (PMID 111)."),
	}}
	retriever := &fakeRetriever{bundles: []*retrieval.EvidenceBundle{
		bundleWith(
			retrieval.Document{PMID: "111", Title: "AChE inhibition"},
			retrieval.Document{PMID: "222", Title: "Cholinergic signalling"},
		),
	}}

	var progress []int
	onProgress := func(hop int, tool string, args map[string]any) {
		progress = append(progress, hop)
		if tool != searchLiteratureTool {
			t.Errorf("progress tool = %q", tool)
		}
	}

	orchestrator := NewOrchestrator(model, retriever, 0)

	result, err := orchestrator.Run(context.Background(), "How does donepezil work?", onProgress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Hops != 1 {
		t.Errorf("Hops = %d, want 1", result.Hops)
	}
	if len(result.Trace) != 1 {
		t.Fatalf("trace length = %d, want 1", len(result.Trace))
	}

	entry := result.Trace[0]
	if entry.Hop != 1 || entry.Tool != searchLiteratureTool {
		t.Errorf("trace entry = %+v", entry)
	}
	if !strings.Contains(entry.ResultSummary, "2 docs retrieved: PMIDs 111, 222") {
		t.Errorf("summary = %q", entry.ResultSummary)
	}

	if len(result.CitedPapers) != 2 || result.CitedPapers[0].PMID != "111" || result.CitedPapers[1].PMID != "222" {
		t.Errorf("CitedPapers = %v", result.CitedPapers)
	}

	if len(progress) != 1 || progress[0] != 1 {
		t.Errorf("progress hops = %v", progress)
	}

	// The second model turn must carry the tool result back.
	if len(model.requests) != 2 {
		t.Fatalf("model turns = %d, want 2", len(model.requests))
	}
	last := model.requests[1].Messages[len(model.requests[1].Messages)-1]
	if last.Role != "user" || last.Content[0].ToolUseID != "tu_1" {
		t.Errorf("tool result message = %+v", last)
	}
	if !strings.Contains(last.Content[0].Content, `"num_docs_found":2`) {
		t.Errorf("tool result payload = %q", last.Content[0].Content)
	}
}

func TestRun_CitedPapersDedupFirstSeenTitleWins(t *testing.T) {
	model := &scriptedModel{turns: []*bedrock.ToolTurn{
		searchTurn("tu_1", "q1"),
		searchTurn("tu_2", "q2"),
		textTurn("done"),
	}}
	retriever := &fakeRetriever{bundles: []*retrieval.EvidenceBundle{
		bundleWith(retrieval.Document{PMID: "111", Title: "First title"}),
		bundleWith(
			retrieval.Document{PMID: "111", Title: "Different later title"},
			retrieval.Document{PMID: "333", Title: "New paper"},
		),
	}}

	orchestrator := NewOrchestrator(model, retriever, 0)

	result, err := orchestrator.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.CitedPapers) != 2 {
		t.Fatalf("CitedPapers = %v", result.CitedPapers)
	}
	if result.CitedPapers[0].Title != "First title" {
		t.Errorf("first-seen title must win, got %q", result.CitedPapers[0].Title)
	}
	if result.CitedPapers[1].PMID != "333" {
		t.Errorf("insertion order broken: %v", result.CitedPapers)
	}
}

func TestRun_MaxHopsExhausted(t *testing.T) {
	// A model that always wants another tool call never terminates on its own.
	model := &scriptedModel{turns: []*bedrock.ToolTurn{searchTurn("tu", "again")}}
	retriever := &fakeRetriever{bundles: []*retrieval.EvidenceBundle{
		bundleWith(retrieval.Document{PMID: "111", Title: "T"}),
	}}

	orchestrator := NewOrchestrator(model, retriever, 0)

	result, err := orchestrator.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Hops != maxHops {
		t.Errorf("Hops = %d, want %d", result.Hops, maxHops)
	}
	if result.Answer != "Agent reached max hops." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if !result.LowConfidence {
		t.Error("max-hops result must be low confidence")
	}
	if len(result.Trace) != maxHops {
		t.Errorf("trace length = %d, want %d", len(result.Trace), maxHops)
	}
}

func TestRun_UnknownToolYieldsErrorResult(t *testing.T) {
	model := &scriptedModel{turns: []*bedrock.ToolTurn{
		{
			Content:    []bedrock.ContentBlock{{Type: "tool_use", ID: "tu_1", Name: "divine_the_answer"}},
			ToolCalls:  []bedrock.ToolCall{{ID: "tu_1", Name: "divine_the_answer", Args: map[string]any{}}},
			StopReason: "tool_use",
		},
		textTurn("ok"),
	}}

	orchestrator := NewOrchestrator(model, &fakeRetriever{}, 0)

	result, err := orchestrator.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("unknown tool must not fail the run: %v", err)
	}

	if result.Trace[0].ResultSummary != "Error: Unknown tool: divine_the_answer" {
		t.Errorf("summary = %q", result.Trace[0].ResultSummary)
	}

	payload := model.requests[1].Messages[len(model.requests[1].Messages)-1].Content[0].Content
	if payload != `{"error":"Unknown tool: divine_the_answer"}` {
		t.Errorf("payload = %q", payload)
	}
}

func TestRun_EmptyResultForwardedAsErrorPayload(t *testing.T) {
	model := &scriptedModel{turns: []*bedrock.ToolTurn{
		searchTurn("tu_1", "obscure question"),
		textTurn("I don't have sufficient evidence to answer."),
	}}
	retriever := &fakeRetriever{bundleErr: retrieval.ErrNoResults}

	orchestrator := NewOrchestrator(model, retriever, 0)

	result, err := orchestrator.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("empty tool result must not fail the run: %v", err)
	}

	payload := model.requests[1].Messages[len(model.requests[1].Messages)-1].Content[0].Content
	if payload != `{"error":"No results found."}` {
		t.Errorf("payload = %q", payload)
	}
	if result.Trace[0].ResultSummary != "Error: No results found." {
		t.Errorf("summary = %q", result.Trace[0].ResultSummary)
	}
	if !result.LowConfidence {
		t.Error("hedging answer after empty evidence must be low confidence")
	}
}

func TestRun_DrugLookupSummary(t *testing.T) {
	target := "Acetylcholinesterase"
	units := "nM"
	potency := 6.7
	model := &scriptedModel{turns: []*bedrock.ToolTurn{
		{
			Content: []bedrock.ContentBlock{{Type: "tool_use", ID: "tu_1", Name: drugLookupTool}},
			ToolCalls: []bedrock.ToolCall{
				{ID: "tu_1", Name: drugLookupTool, Args: map[string]any{"drug_name": "donepezil"}},
			},
			StopReason: "tool_use",
		},
		textTurn("Donepezil targets AChE with an IC50 of 6.7 nM."),
	}}
	retriever := &fakeRetriever{matches: &retrieval.DrugMatches{
		Results: []database.Compound{{DrugName: "DONEPEZIL", ProteinTarget: &target, PotencyIC50: &potency, StandardUnits: &units}},
	}}

	orchestrator := NewOrchestrator(model, retriever, 0)

	result, err := orchestrator.Run(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Trace[0].ResultSummary != "DONEPEZIL → Acetylcholinesterase IC50=6.7 nM" {
		t.Errorf("summary = %q", result.Trace[0].ResultSummary)
	}
	if len(result.CitedPapers) != 0 {
		t.Error("drug lookups must not add citations")
	}
	if retriever.drugQueries[0] != "donepezil" {
		t.Errorf("drug query = %v", retriever.drugQueries)
	}
}
