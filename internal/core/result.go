package core

// Result statuses.
const (
	StatusPass = "pass"
	StatusFail = "fail"
)

// Result is the structured output of a run.
// CleanedData is always empty when Status is StatusFail.
type Result struct {
	Status      string   `json:"status"`
	Errors      []string `json:"errors"`
	CleanedData []Record `json:"cleaned_data"`
}

// NewResult builds the structured output. Cleaned records are withheld
// whenever the outcome has any error.
func NewResult(outcome ValidationOutcome, cleaned Table) Result {
	if !outcome.Passed {
		return Result{
			Status:      StatusFail,
			Errors:      outcome.Messages(),
			CleanedData: []Record{},
		}
	}
	return Result{
		Status:      StatusPass,
		Errors:      []string{},
		CleanedData: Records(cleaned),
	}
}

// Passed reports whether the run passed validation.
func (r Result) Passed() bool {
	return r.Status == StatusPass
}
