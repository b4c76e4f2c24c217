package model

// Result is a single web search hit flowing through the pipeline.
// RelevancyScore stays nil until a reranker scores the record.
type Result struct {
	Title          string   `json:"title"`
	Snippet        string   `json:"snippet"`
	URL            string   `json:"url"`
	RelevancyScore *float64 `json:"relevancy_score,omitempty"`
}

// Text is the string rerankers score against the query.
func (r *Result) Text() string {
	return r.Title + " " + r.Snippet
}

func (r *Result) SetScore(score float64) {
	r.RelevancyScore = &score
}

// Score returns the relevancy score, or 0 when the record is unscored.
func (r *Result) Score() float64 {
	if r.RelevancyScore == nil {
		return 0
	}
	return *r.RelevancyScore
}
