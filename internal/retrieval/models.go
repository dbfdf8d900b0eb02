package retrieval

import (
	"errors"

	"github.com/neurocosci/neuro-agent/internal/database"
)

// Expected empty-result outcomes. These are tool results, not failures:
// the orchestrator forwards their message to the model as an error payload.
var (
	ErrNoResults = errors.New("No results found.")
	ErrNoRecords = errors.New("No records found.")
)

// Document is one evidence paper, enriched with compound fields where the
// join found a matching row.
type Document struct {
	PMID           string   `json:"pmid"`
	Title          string   `json:"title"`
	ArticleExcerpt string   `json:"article_excerpt"`
	DrugName       *string  `json:"drug_name"`
	PotencyIC50    *float64 `json:"potency_ic50"`
	StandardUnits  *string  `json:"standard_units"`
	ProteinTarget  *string  `json:"protein_target"`
}

// EvidenceBundle is the confidence-annotated result of a literature search.
type EvidenceBundle struct {
	Documents      []Document `json:"documents"`
	NumDocsFound   int        `json:"num_docs_found"`
	BestSimilarity float64    `json:"best_similarity"`
	LowConfidence  bool       `json:"low_confidence"`
	ConfidenceNote string     `json:"confidence_note"`
}

// DrugMatches is the result of a structured drug lookup.
type DrugMatches struct {
	Results []database.Compound `json:"results"`
}
