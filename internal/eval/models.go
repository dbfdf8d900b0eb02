package eval

// EvalQuestion is one entry of the static question bank.
type EvalQuestion struct {
	ID               string   `yaml:"id" json:"id"`
	Question         string   `yaml:"question" json:"question"`
	ExpectedConcepts []string `yaml:"expected_concepts" json:"expected_concepts"`
	Category         string   `yaml:"category" json:"category"`
	GapNote          string   `yaml:"gap_note,omitempty" json:"gap_note,omitempty"`
}

// ScoreResult is the concept-coverage grade of one answer.
type ScoreResult struct {
	Hits     []string `json:"hits"`
	Missed   []string `json:"missed"`
	Coverage float64  `json:"coverage"`
	Pass     bool     `json:"pass"`
}

// QuestionResult is one scored row of a batch. Error carries the failure
// message when the agent run itself failed; the row then counts as a miss
// on every expected concept.
type QuestionResult struct {
	ID            string      `json:"id"`
	Question      string      `json:"question"`
	Category      string      `json:"category"`
	Answer        string      `json:"answer,omitempty"`
	Hops          int         `json:"hops"`
	LowConfidence bool        `json:"low_confidence"`
	Error         string      `json:"error,omitempty"`
	Score         ScoreResult `json:"score"`
}

type CategorySummary struct {
	Passed int     `json:"passed"`
	Total  int     `json:"total"`
	Pct    float64 `json:"pct"`
}

type OverallSummary struct {
	Passed   int     `json:"passed"`
	Total    int     `json:"total"`
	Pct      float64 `json:"pct"`
	MeetsBar bool    `json:"meets_bar"`
}

type BatchResult struct {
	Results     []QuestionResult           `json:"results"`
	PerCategory map[string]CategorySummary `json:"per_category"`
	Overall     OverallSummary             `json:"overall"`
}

// RunBatchRequest is the body of POST /api/v1/eval/run.
type RunBatchRequest struct {
	Categories   []string `json:"categories,omitempty" description:"Categories to run (default: all)"`
	DelaySeconds float64  `json:"delay_seconds,omitempty" description:"Delay between questions in seconds"`
}
