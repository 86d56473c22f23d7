package model

// TestCase is the stored outcome of one test within a run
type TestCase struct {
	// Status reported by the test framework
	Status Outcome `json:"status"`
	// Captured output, typically only kept for ptest and failing tests
	Log string `json:"log,omitempty"`
	// Duration in seconds
	Duration float64 `json:"duration,omitempty"`
	// oeselftest tags attached to the test
	OETags []string `json:"oetags,omitempty"`
}

// Results maps test identifiers to their test cases in document order.
type Results = Ordered[TestCase]

// ResultRecord is a single test run: the configuration it ran with and the
// results it produced.
type ResultRecord struct {
	Configuration Configuration `json:"configuration"`
	Result        Results       `json:"result"`
}

// Outcome returns the status of a test, or OutcomeNotRun when the record is
// nil or does not contain the test.
func (r *ResultRecord) Outcome(testID string) Outcome {
	if r == nil {
		return OutcomeNotRun
	}
	tc, ok := r.Result.Get(testID)
	if !ok {
		return OutcomeNotRun
	}
	return tc.Status
}

// RunSet maps run identifiers to result records in discovery order. It is the
// shape of a testresults.json document.
type RunSet = Ordered[*ResultRecord]
