package regression

import (
	"fmt"
	"strings"

	"github.com/perfgo/resulttool/model"
	"github.com/rs/zerolog"
)

// Classification describes how a test's outcome moved between two runs.
type Classification string

const (
	// Regression: the test no longer passes
	ClassRegression Classification = "regression"
	// Improvement: the test passes now and did not before
	ClassImprovement Classification = "improvement"
	// Changed: the status moved between two non-passing outcomes
	ClassChanged Classification = "changed"
	// Added: the test only exists in the target run
	ClassAdded Classification = "added"
	// Removed: the test only exists in the base run
	ClassRemoved Classification = "removed"
)

// Classify derives the classification of an outcome change. It returns ""
// when both outcomes are equal.
func Classify(base, target model.Outcome) Classification {
	switch {
	case base == target:
		return ""
	case base == model.OutcomeNotRun:
		return ClassAdded
	case target == model.OutcomeNotRun:
		return ClassRemoved
	case base.Passed() && !target.Passed():
		return ClassRegression
	case !base.Passed() && target.Passed():
		return ClassImprovement
	default:
		return ClassChanged
	}
}

// Entry is the outcome change of a single test.
type Entry struct {
	Base           model.Outcome  `json:"base"`
	Target         model.Outcome  `json:"target"`
	Classification Classification `json:"classification"`
}

// IsRegression reports whether the target outcome is worse than a pass:
// anything that is not a pass counts, including a test that vanished.
func (e Entry) IsRegression() bool {
	return !e.Target.Passed()
}

// Regressions maps test identifiers to their outcome change. Only tests
// whose outcome differs are present.
type Regressions = model.Ordered[Entry]

// CompareResult computes the per-test outcome changes from base to target.
// Tests are visited in base order followed by tests only found in target; a
// test missing from one side is reported as model.OutcomeNotRun there. A nil
// record is treated as an empty one.
//
// The returned text summarizes the comparison for humans. It names both runs
// and lists every changed test with both outcomes.
func CompareResult(logger zerolog.Logger, baseName, targetName string, base, target *model.ResultRecord) (*Regressions, string) {
	changes := &Regressions{}

	visit := func(testID string) {
		if changes.Has(testID) {
			return
		}
		b, t := base.Outcome(testID), target.Outcome(testID)
		if b == t {
			return
		}
		changes.Set(testID, Entry{Base: b, Target: t, Classification: Classify(b, t)})
	}

	var newTests int
	if base != nil {
		for testID, tc := range base.Result.All() {
			if tc.Status == model.OutcomeNotRun {
				logger.Error().Str("test", testID).Str("run", baseName).Msg("Failed to retrieve base test case status")
			}
			visit(testID)
		}
	}
	if target != nil {
		for testID := range target.Result.All() {
			if base == nil || !base.Result.Has(testID) {
				newTests++
			}
			visit(testID)
		}
	}

	logger.Debug().
		Str("base", baseName).
		Str("target", targetName).
		Int("changes", changes.Len()).
		Msg("Compared results")

	return changes, summarize(baseName, targetName, changes, newTests)
}

func summarize(baseName, targetName string, changes *Regressions, newTests int) string {
	var sb strings.Builder

	var regressed, nowPassing int
	for _, e := range changes.All() {
		if e.IsRegression() {
			regressed++
		} else {
			nowPassing++
		}
	}

	switch {
	case changes.Len() == 0:
		fmt.Fprintf(&sb, "Match:       %s\n             %s\n", baseName, targetName)
	case regressed == 0:
		fmt.Fprintf(&sb, "Improvement: %s\n             %s\n             (+%d test(s) passing)\n", baseName, targetName, nowPassing)
	default:
		fmt.Fprintf(&sb, "Regression:  %s\n             %s\n", baseName, targetName)
	}
	for testID, e := range changes.All() {
		fmt.Fprintf(&sb, "    %s: %s -> %s\n", testID, e.Base, e.Target)
	}
	if regressed > 0 && nowPassing > 0 {
		fmt.Fprintf(&sb, "    Additionally, %d previously failing test(s) is/are now passing\n", nowPassing)
	}
	if newTests > 0 {
		fmt.Fprintf(&sb, "    Additionally, %d new test(s) is/are present\n", newTests)
	}

	return sb.String()
}
