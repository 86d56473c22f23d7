package model

// Outcome is the status recorded for a single test case
type Outcome string

const (
	// OutcomeNotRun marks a test that is absent from a result set
	OutcomeNotRun  Outcome = ""
	OutcomePassed  Outcome = "PASSED"
	OutcomeFailed  Outcome = "FAILED"
	OutcomeSkipped Outcome = "SKIPPED"
	OutcomeError   Outcome = "ERROR"
)

// Category groups outcomes the way reports count them
type Category uint8

const (
	CategoryOther Category = iota
	CategoryPassed
	CategoryFailed
	CategorySkipped
)

// ptest and ltp results use their own spelling of the same statuses.
var outcomeCategories = map[Outcome]Category{
	OutcomePassed: CategoryPassed,
	"passed":      CategoryPassed,
	"PASS":        CategoryPassed,
	"XFAIL":       CategoryPassed,

	OutcomeFailed: CategoryFailed,
	"failed":      CategoryFailed,
	"FAIL":        CategoryFailed,
	OutcomeError:  CategoryFailed,
	"error":       CategoryFailed,
	"UNKNOWN":     CategoryFailed,
	"XPASS":       CategoryFailed,

	OutcomeSkipped: CategorySkipped,
	"skipped":      CategorySkipped,
	"UNSUPPORTED":  CategorySkipped,
	"UNTESTED":     CategorySkipped,
	"UNRESOLVED":   CategorySkipped,
}

// Category returns how the outcome is counted. Unrecognized outcomes,
// including OutcomeNotRun, belong to CategoryOther.
func (o Outcome) Category() Category {
	return outcomeCategories[o]
}

// Passed reports whether the outcome counts as a pass.
func (o Outcome) Passed() bool {
	return o.Category() == CategoryPassed
}

// IsError reports whether the test errored rather than failed an assertion.
func (o Outcome) IsError() bool {
	return o == OutcomeError || o == "error"
}

func (o Outcome) String() string {
	if o == OutcomeNotRun {
		return "None"
	}
	return string(o)
}
