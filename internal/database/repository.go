package database

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// NearestChunks runs a nearest-neighbor search over the paper chunk index
// and returns the pmid and cosine distance of each hit, ascending.
func (db *DB) NearestChunks(ctx context.Context, queryEmbeddings []float32, limit int) ([]ChunkHit, error) {
	pgvectorEmbeddings := pgvector.NewVector(queryEmbeddings)

	query := `
	SELECT
	  pmid,
	  embedding <=> $1 AS distance
	FROM paper_chunks
	ORDER BY distance ASC
	LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, pgvectorEmbeddings, limit)
	if err != nil {
		return nil, fmt.Errorf("Unable to query the chunk index: %w", err)
	}

	defer rows.Close()

	var hits []ChunkHit
	for rows.Next() {
		var hit ChunkHit

		if err := rows.Scan(&hit.PMID, &hit.Distance); err != nil {
			return nil, fmt.Errorf("Failed to scan hit: %w", err)
		}

		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return hits, nil
}

// FetchPapers joins the selected pmids against the compound-potency table.
// The join is an outer join: papers with no compound entry still come back,
// with nil compound columns.
func (db *DB) FetchPapers(ctx context.Context, pmids []string, limit int) ([]PaperRecord, error) {
	query := `
	SELECT m.pmid, m.title, m.article_text, c.drug_name, c.potency_ic50,
	       c.standard_units, c.protein_target
	FROM pubmed_papers AS m
	LEFT JOIN neuro_compounds AS c
	    ON m.pmid = c.pubmed_id
	WHERE m.pmid = ANY($1)
	LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, pmids, limit)
	if err != nil {
		return nil, fmt.Errorf("Unable to fetch papers: %w", err)
	}

	defer rows.Close()

	var papers []PaperRecord
	for rows.Next() {
		var paper PaperRecord

		if err := rows.Scan(&paper.PMID, &paper.Title, &paper.ArticleText,
			&paper.DrugName, &paper.PotencyIC50, &paper.StandardUnits, &paper.ProteinTarget); err != nil {
			return nil, fmt.Errorf("Failed to scan paper: %w", err)
		}

		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return papers, nil
}

// SearchCompounds does a case-insensitive substring match on drug name,
// alphabetical, capped by limit.
func (db *DB) SearchCompounds(ctx context.Context, drugName string, limit int) ([]Compound, error) {
	query := `
	SELECT drug_name, protein_target, uniprot_id, pubmed_id, potency_ic50, standard_units
	FROM neuro_compounds
	WHERE UPPER(drug_name) LIKE '%' || UPPER($1) || '%'
	ORDER BY drug_name ASC
	LIMIT $2`

	rows, err := db.Pool.Query(ctx, query, drugName, limit)
	if err != nil {
		return nil, fmt.Errorf("compound search failed. Error: %w", err)
	}

	defer rows.Close()

	var compounds []Compound
	for rows.Next() {
		var compound Compound

		if err := rows.Scan(&compound.DrugName, &compound.ProteinTarget, &compound.UniprotID,
			&compound.PubmedID, &compound.PotencyIC50, &compound.StandardUnits); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		compounds = append(compounds, compound)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return compounds, nil
}
