package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/neurocosci/neuro-agent/internal/database"
	"github.com/rs/zerolog/log"
)

// QueryExpander widens a question into a set of search queries.
type QueryExpander interface {
	Expand(ctx context.Context, question string) []string
}

// Embedder turns text into a query vector.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// Store is the evidence store: the chunk index plus the structured tables.
type Store interface {
	NearestChunks(ctx context.Context, queryEmbeddings []float32, limit int) ([]database.ChunkHit, error)
	FetchPapers(ctx context.Context, pmids []string, limit int) ([]database.PaperRecord, error)
	SearchCompounds(ctx context.Context, drugName string, limit int) ([]database.Compound, error)
}

type Service struct {
	expander QueryExpander
	embedder Embedder
	store    Store
	cache    BundleCache
}

// NewService builds the evidence aggregator. cache may be nil.
func NewService(expander QueryExpander, embedder Embedder, store Store, cache BundleCache) *Service {
	return &Service{
		expander: expander,
		embedder: embedder,
		store:    store,
		cache:    cache,
	}
}

const (
	neighborsPerQuery     = 5
	maxCandidates         = 5
	maxDocuments          = 3
	maxDrugMatches        = 10
	maxExcerptRunes       = 15000
	lowConfidenceDistance = 1.2
)

// Index entries that mean "no document": the vector store pads results
// with these.
var sentinelIDs = map[string]bool{
	"":     true,
	"0":    true,
	"null": true,
}

// Retrieve runs every expanded query through the chunk index, merges hits
// by pmid keeping the minimum distance, ranks ascending, and enriches the
// winners from the structured tables. Per-query failures contribute nothing;
// the two expected empty outcomes surface as ErrNoResults / ErrNoRecords.
func (s *Service) Retrieve(ctx context.Context, question string) (*EvidenceBundle, error) {
	if s.cache != nil {
		if bundle, ok := s.cache.Get(ctx, question); ok {
			log.Info().Str("question", question).Msg("Evidence cache hit")
			return bundle, nil
		}
	}

	queries := s.expander.Expand(ctx, question)

	minDistance := map[string]float64{}
	firstSeen := map[string]int{}
	seq := 0

	for _, query := range queries {
		embeddings, err := s.embedder.GenerateEmbeddings(ctx, query)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("Embedding failed, skipping query")
			continue
		}

		hits, err := s.store.NearestChunks(ctx, embeddings, neighborsPerQuery)
		if err != nil {
			log.Warn().Err(err).Str("query", query).Msg("Index search failed, skipping query")
			continue
		}

		for _, hit := range hits {
			if sentinelIDs[hit.PMID] {
				continue
			}
			if _, ok := minDistance[hit.PMID]; !ok {
				firstSeen[hit.PMID] = seq
				seq++
			}
			if d, ok := minDistance[hit.PMID]; !ok || hit.Distance < d {
				minDistance[hit.PMID] = hit.Distance
			}
		}
	}

	if len(minDistance) == 0 {
		return nil, ErrNoResults
	}

	topIDs, bestScore := rankCandidates(minDistance, firstSeen, maxCandidates)
	lowConfidence := bestScore > lowConfidenceDistance

	papers, err := s.store.FetchPapers(ctx, topIDs, maxDocuments)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch paper records: %w", err)
	}
	if len(papers) == 0 {
		return nil, ErrNoRecords
	}

	documents := make([]Document, 0, len(papers))
	for _, paper := range papers {
		documents = append(documents, buildDocument(paper))
	}

	bundle := &EvidenceBundle{
		Documents:      documents,
		NumDocsFound:   len(documents),
		BestSimilarity: math.Round(bestScore*10000) / 10000,
		LowConfidence:  lowConfidence,
		ConfidenceNote: confidenceNote(lowConfidence),
	}

	if s.cache != nil {
		s.cache.Set(ctx, question, bundle)
	}

	return bundle, nil
}

// rankCandidates orders merged candidates by ascending distance, breaking
// ties by first-seen order, and returns the top ids with the global minimum
// distance.
func rankCandidates(minDistance map[string]float64, firstSeen map[string]int, limit int) ([]string, float64) {
	ids := make([]string, 0, len(minDistance))
	for id := range minDistance {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		di, dj := minDistance[ids[i]], minDistance[ids[j]]
		if di != dj {
			return di < dj
		}
		return firstSeen[ids[i]] < firstSeen[ids[j]]
	})

	if len(ids) > limit {
		ids = ids[:limit]
	}

	best := minDistance[ids[0]]
	for _, id := range ids[1:] {
		if minDistance[id] < best {
			best = minDistance[id]
		}
	}

	return ids, best
}

func buildDocument(paper database.PaperRecord) Document {
	title := "Unknown"
	if paper.Title != nil && *paper.Title != "" {
		title = *paper.Title
	}

	return Document{
		PMID:           paper.PMID,
		Title:          title,
		ArticleExcerpt: truncateRunes(paper.ArticleText, maxExcerptRunes),
		DrugName:       paper.DrugName,
		PotencyIC50:    paper.PotencyIC50,
		StandardUnits:  paper.StandardUnits,
		ProteinTarget:  paper.ProteinTarget,
	}
}

func confidenceNote(lowConfidence bool) string {
	if lowConfidence {
		return "LOW CONFIDENCE: Documents may not be closely relevant."
	}
	return "Good confidence: Documents appear relevant."
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// LookupDrug is the structured drug lookup tool: case-insensitive substring
// match on drug name, alphabetical, capped at 10 rows. Empty match sets and
// transport failures both surface as errors for the dispatcher to fold into
// an error payload.
func (s *Service) LookupDrug(ctx context.Context, drugName string) (*DrugMatches, error) {
	compounds, err := s.store.SearchCompounds(ctx, drugName, maxDrugMatches)
	if err != nil {
		return nil, err
	}

	if len(compounds) == 0 {
		return nil, fmt.Errorf("No entries found for '%s'.", drugName)
	}

	return &DrugMatches{Results: compounds}, nil
}
