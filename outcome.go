package prodmeta

import "context"

// Outcome is the result of extracting one URL. Exactly one of Data and
// Error is set, selected by Success.
type Outcome struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
	URL     string   `json:"url"`

	// Code classifies failures (ERENDER, EEXTRACT, ...). Not serialized.
	Code string `json:"-"`
}

// Succeeded returns a successful outcome for url.
func Succeeded(url string, p *Product) *Outcome {
	if p == nil {
		p = NewProduct()
	}
	if p.ImageLinks == nil {
		p.ImageLinks = []string{}
	}
	return &Outcome{Success: true, Data: p, URL: url}
}

// Failed returns a failed outcome for url with the given failure code.
func Failed(url, code, message string) *Outcome {
	return &Outcome{Success: false, Error: message, URL: url, Code: code}
}

// Report aggregates the outcomes of one batch.
type Report struct {
	TotalURLs             int        `json:"total_urls"`
	SuccessfulExtractions int        `json:"successful_extractions"`
	FailedExtractions     int        `json:"failed_extractions"`
	Results               []*Outcome `json:"results"`
	Summary               Summary    `json:"summary"`
}

// Summary holds the derived statistics of a Report.
type Summary struct {
	// SuccessRate is the percentage of successful extractions, 0 for an empty batch.
	SuccessRate float64 `json:"success_rate"`

	// TotalProcessingTime is the wall-clock duration of the batch in seconds,
	// rounded to two decimal places.
	TotalProcessingTime float64 `json:"total_processing_time"`
}

// NewReport returns an empty report sized for total URLs.
func NewReport(total int) *Report {
	return &Report{
		TotalURLs: total,
		Results:   make([]*Outcome, 0, total),
	}
}

// Add appends an outcome and updates the counters.
func (r *Report) Add(o *Outcome) {
	r.Results = append(r.Results, o)
	if o.Success {
		r.SuccessfulExtractions++
	} else {
		r.FailedExtractions++
	}
}

// ProductExtractor turns one URL into one Outcome.
type ProductExtractor interface {
	// ExtractOne renders and extracts a single product page.
	// Failures are reported through the returned Outcome, never as a nil result.
	ExtractOne(ctx context.Context, url string, cfg ProviderConfig) *Outcome
}
