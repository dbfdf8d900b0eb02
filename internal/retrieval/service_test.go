package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/neurocosci/neuro-agent/internal/database"
)

type fakeExpander struct {
	queries []string
}

func (f *fakeExpander) Expand(ctx context.Context, question string) []string {
	return f.queries
}

type fakeEmbedder struct {
	errFor map[string]error
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	if err, ok := f.errFor[text]; ok {
		return nil, err
	}
	// Encode the query text so the store can key hits per query.
	return []float32{float32(len(text))}, nil
}

type fakeStore struct {
	hitsByQueryLen map[int][]database.ChunkHit
	searchErrFor   map[int]error
	papers         []database.PaperRecord
	papersErr      error
	fetchedPMIDs   []string
	compounds      []database.Compound
	compoundsErr   error
}

func (f *fakeStore) NearestChunks(ctx context.Context, queryEmbeddings []float32, limit int) ([]database.ChunkHit, error) {
	key := int(queryEmbeddings[0])
	if err, ok := f.searchErrFor[key]; ok {
		return nil, err
	}
	return f.hitsByQueryLen[key], nil
}

func (f *fakeStore) FetchPapers(ctx context.Context, pmids []string, limit int) ([]database.PaperRecord, error) {
	f.fetchedPMIDs = pmids
	if f.papersErr != nil {
		return nil, f.papersErr
	}
	papers := f.papers
	if len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}

func (f *fakeStore) SearchCompounds(ctx context.Context, drugName string, limit int) ([]database.Compound, error) {
	if f.compoundsErr != nil {
		return nil, f.compoundsErr
	}
	return f.compounds, nil
}

func strPtr(s string) *string { return &s }

func paperFor(pmid string) database.PaperRecord {
	return database.PaperRecord{
		PMID:        pmid,
		Title:       strPtr("Title " + pmid),
		ArticleText: "text",
	}
}

func TestRetrieve_MinimumDistanceWins(t *testing.T) {
	q1, q2 := "q1", "longer q2"
	store := &fakeStore{
		hitsByQueryLen: map[int][]database.ChunkHit{
			len(q1): {{PMID: "A", Distance: 0.9}},
			len(q2): {{PMID: "A", Distance: 0.5}},
		},
		papers: []database.PaperRecord{paperFor("A")},
	}

	service := NewService(&fakeExpander{queries: []string{q1, q2}}, &fakeEmbedder{}, store, nil)

	bundle, err := service.Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bundle.BestSimilarity != 0.5 {
		t.Errorf("BestSimilarity = %v, want 0.5 (minimum wins)", bundle.BestSimilarity)
	}
	if bundle.LowConfidence {
		t.Error("0.5 distance must not be low confidence")
	}
}

func TestRetrieve_SentinelIDsExcluded(t *testing.T) {
	q := "q"
	store := &fakeStore{
		hitsByQueryLen: map[int][]database.ChunkHit{
			len(q): {
				{PMID: "0", Distance: 0.1},
				{PMID: "null", Distance: 0.1},
				{PMID: "", Distance: 0.1},
			},
		},
	}

	service := NewService(&fakeExpander{queries: []string{q}}, &fakeEmbedder{}, store, nil)

	_, err := service.Retrieve(context.Background(), "question")
	if !errors.Is(err, ErrNoResults) {
		t.Fatalf("expected ErrNoResults, got %v", err)
	}
	if err.Error() != "No results found." {
		t.Errorf("error message: %q", err.Error())
	}
}

func TestRetrieve_PerQueryFailuresSwallowed(t *testing.T) {
	good, badEmbed, badSearch := "ok", "bad embed", "bad srch q"
	store := &fakeStore{
		hitsByQueryLen: map[int][]database.ChunkHit{
			len(good): {{PMID: "A", Distance: 0.4}},
		},
		searchErrFor: map[int]error{len(badSearch): errors.New("index down")},
		papers:       []database.PaperRecord{paperFor("A")},
	}
	embedder := &fakeEmbedder{errFor: map[string]error{badEmbed: errors.New("throttled")}}

	service := NewService(&fakeExpander{queries: []string{badEmbed, badSearch, good}}, embedder, store, nil)

	bundle, err := service.Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.NumDocsFound != 1 {
		t.Errorf("NumDocsFound = %d, want 1", bundle.NumDocsFound)
	}
}

func TestRetrieve_ConfidenceBoundary(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		wantLow  bool
	}{
		{"exactly 1.2 is confident", 1.2, false},
		{"just above 1.2 is low", 1.2000001, true},
		{"well below", 0.3, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			q := "q"
			store := &fakeStore{
				hitsByQueryLen: map[int][]database.ChunkHit{
					len(q): {{PMID: "A", Distance: test.distance}},
				},
				papers: []database.PaperRecord{paperFor("A")},
			}
			service := NewService(&fakeExpander{queries: []string{q}}, &fakeEmbedder{}, store, nil)

			bundle, err := service.Retrieve(context.Background(), "question")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if bundle.LowConfidence != test.wantLow {
				t.Errorf("LowConfidence = %v, want %v", bundle.LowConfidence, test.wantLow)
			}

			wantNote := "Good confidence: Documents appear relevant."
			if test.wantLow {
				wantNote = "LOW CONFIDENCE: Documents may not be closely relevant."
			}
			if bundle.ConfidenceNote != wantNote {
				t.Errorf("ConfidenceNote = %q", bundle.ConfidenceNote)
			}
		})
	}
}

func TestRetrieve_TopFiveByAscendingDistance(t *testing.T) {
	q := "q"
	store := &fakeStore{
		hitsByQueryLen: map[int][]database.ChunkHit{
			len(q): {
				{PMID: "F", Distance: 0.9},
				{PMID: "A", Distance: 0.1},
				{PMID: "D", Distance: 0.7},
				{PMID: "B", Distance: 0.2},
				{PMID: "E", Distance: 0.8},
				{PMID: "C", Distance: 0.3},
			},
		},
		papers: []database.PaperRecord{paperFor("A"), paperFor("B"), paperFor("C")},
	}
	service := NewService(&fakeExpander{queries: []string{q}}, &fakeEmbedder{}, store, nil)

	if _, err := service.Retrieve(context.Background(), "question"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"A", "B", "C", "D", "E"}
	if len(store.fetchedPMIDs) != len(want) {
		t.Fatalf("fetched %v, want %v", store.fetchedPMIDs, want)
	}
	for i, pmid := range want {
		if store.fetchedPMIDs[i] != pmid {
			t.Errorf("fetchedPMIDs[%d] = %s, want %s", i, store.fetchedPMIDs[i], pmid)
		}
	}
}

func TestRetrieve_NoRecordsAfterCandidates(t *testing.T) {
	q := "q"
	store := &fakeStore{
		hitsByQueryLen: map[int][]database.ChunkHit{
			len(q): {{PMID: "A", Distance: 0.4}},
		},
		papers: nil, // join drops every candidate
	}
	service := NewService(&fakeExpander{queries: []string{q}}, &fakeEmbedder{}, store, nil)

	_, err := service.Retrieve(context.Background(), "question")
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
	if err.Error() != "No records found." {
		t.Errorf("error message: %q", err.Error())
	}
}

func TestRetrieve_DocumentDefaultsAndTruncation(t *testing.T) {
	q := "q"
	store := &fakeStore{
		hitsByQueryLen: map[int][]database.ChunkHit{
			len(q): {{PMID: "A", Distance: 0.4}},
		},
		papers: []database.PaperRecord{{
			PMID:        "A",
			Title:       nil,
			ArticleText: strings.Repeat("x", maxExcerptRunes+100),
		}},
	}
	service := NewService(&fakeExpander{queries: []string{q}}, &fakeEmbedder{}, store, nil)

	bundle, err := service.Retrieve(context.Background(), "question")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doc := bundle.Documents[0]
	if doc.Title != "Unknown" {
		t.Errorf("Title = %q, want Unknown", doc.Title)
	}
	if len(doc.ArticleExcerpt) != maxExcerptRunes {
		t.Errorf("excerpt length = %d, want %d", len(doc.ArticleExcerpt), maxExcerptRunes)
	}
}

func TestLookupDrug(t *testing.T) {
	t.Run("no entries", func(t *testing.T) {
		service := NewService(nil, nil, &fakeStore{}, nil)

		_, err := service.LookupDrug(context.Background(), "donepezil")
		if err == nil || err.Error() != "No entries found for 'donepezil'." {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("transport error surfaces", func(t *testing.T) {
		service := NewService(nil, nil, &fakeStore{compoundsErr: errors.New("db down")}, nil)

		if _, err := service.LookupDrug(context.Background(), "donepezil"); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("matches returned", func(t *testing.T) {
		store := &fakeStore{compounds: []database.Compound{{DrugName: "DONEPEZIL"}}}
		service := NewService(nil, nil, store, nil)

		matches, err := service.LookupDrug(context.Background(), "donepezil")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(matches.Results) != 1 || matches.Results[0].DrugName != "DONEPEZIL" {
			t.Errorf("Results = %v", matches.Results)
		}
	})
}
