package report

import (
	"github.com/perfgo/resulttool/model"
)

// Counts summarizes the outcomes of one result set.
type Counts struct {
	// Run identifier, empty when the caller has none
	RunID string `json:"run_id,omitempty"`
	// Machine or target label the results are attributed to
	Machine string `json:"machine"`
	Passed  int    `json:"passed"`
	// Failed includes errored tests
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	// Errored counts the tests that errored rather than failed
	Errored int `json:"errored"`
	// Identifiers of failed and errored tests in result order
	FailedTestcases []string `json:"failed_testcases,omitempty"`
}

// Total returns the number of counted tests.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped
}

// Add accumulates other into c.
func (c *Counts) Add(other Counts) {
	c.Passed += other.Passed
	c.Failed += other.Failed
	c.Skipped += other.Skipped
	c.Errored += other.Errored
	c.FailedTestcases = append(c.FailedTestcases, other.FailedTestcases...)
}

// Aggregate counts the outcomes in record. Outcomes outside the passed,
// failed and skipped categories are ignored; a nil record yields zero counts.
// runID is only used as a label.
func Aggregate(runID string, record *model.ResultRecord, machine string) Counts {
	counts := Counts{RunID: runID, Machine: machine}
	if record == nil {
		return counts
	}

	for testID, tc := range record.Result.All() {
		switch tc.Status.Category() {
		case model.CategoryPassed:
			counts.Passed++
		case model.CategoryFailed:
			counts.Failed++
			if tc.Status.IsError() {
				counts.Errored++
			}
			counts.FailedTestcases = append(counts.FailedTestcases, testID)
		case model.CategorySkipped:
			counts.Skipped++
		}
	}
	return counts
}
