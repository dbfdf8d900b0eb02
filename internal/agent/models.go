package agent

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	Question string `json:"question" description:"The research question to answer"`
}

// TraceEntry records one tool invocation, in invocation order.
type TraceEntry struct {
	Hop           int            `json:"hop"`
	Tool          string         `json:"tool"`
	Args          map[string]any `json:"args"`
	ResultSummary string         `json:"result_summary"`
}

// CitedPaper is a deduplicated source document surfaced with the answer.
type CitedPaper struct {
	PMID  string `json:"pmid"`
	Title string `json:"title"`
}

// RunResult is the terminal state of one agent run.
type RunResult struct {
	Answer        string       `json:"answer"`
	Hops          int          `json:"hops"`
	LowConfidence bool         `json:"low_confidence"`
	Trace         []TraceEntry `json:"trace"`
	CitedPapers   []CitedPaper `json:"cited_papers"`
}

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}
