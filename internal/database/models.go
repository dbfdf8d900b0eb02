package database

// ChunkHit is one nearest-neighbor result from the pgvector index.
// PMID is the raw retrieval-store id; distance is lower-is-better.
type ChunkHit struct {
	PMID     string
	Distance float64
}

// PaperRecord is one row of the papers ⟕ compounds join. Compound columns
// are nullable: a paper without a matching compound row carries nils.
type PaperRecord struct {
	PMID          string
	Title         *string
	ArticleText   string
	DrugName      *string
	PotencyIC50   *float64
	StandardUnits *string
	ProteinTarget *string
}

// Compound is one row of the compound-potency table.
type Compound struct {
	DrugName      string   `json:"drug_name"`
	ProteinTarget *string  `json:"protein_target"`
	UniprotID     *string  `json:"uniprot_id"`
	PubmedID      *string  `json:"pubmed_id"`
	PotencyIC50   *float64 `json:"potency_ic50"`
	StandardUnits *string  `json:"standard_units"`
}
