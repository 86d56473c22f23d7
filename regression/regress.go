package regression

import (
	"slices"

	"github.com/perfgo/resulttool/model"
	"github.com/perfgo/resulttool/resultutils"
	"github.com/rs/zerolog"
)

// Options control how Regress pairs runs.
type Options struct {
	// Guess selection metadata for oeselftest runs that lack it
	GuessMetadata bool
}

// Pair is the comparison of one base run against one target run of the
// same group.
type Pair struct {
	Key     string
	Base    string
	Target  string
	Changes *Regressions
	Text    string
}

// HasRegressions reports whether any test no longer passes in the target.
func (p Pair) HasRegressions() bool {
	if p.Changes == nil {
		return false
	}
	for _, e := range p.Changes.All() {
		if e.IsRegression() {
			return true
		}
	}
	return false
}

// Summary is the result of comparing two indexes.
type Summary struct {
	// Pairs that still contain regressions after clean pairs were matched
	Regressions []Pair
	// Pairs without regressions
	Matches []Pair
	// Group keys present in the base index but not in the target index
	NotFound []string
	// Group keys present on both sides where no base run could be compared
	// with any target run
	Incomparable []string
}

// Regress compares every group of base against the group with the same key
// in target. Within a group, base runs are first matched one-to-one with
// comparable target runs that show no regressions; the remaining runs are
// then compared pairwise and every comparable pair with regressions is
// reported. Runs that CanBeCompared rejects are never compared.
func Regress(logger zerolog.Logger, base, target *resultutils.Index, opts Options) Summary {
	var summary Summary
	if base == nil {
		return summary
	}
	if target == nil {
		target = &resultutils.Index{}
	}

	for key, baseGroup := range base.All() {
		targetGroup, ok := target.Get(key)
		if !ok {
			logger.Debug().Str("key", key).Msg("No target results for group")
			summary.NotFound = append(summary.NotFound, key)
			continue
		}

		g := groupComparison{
			logger:  logger,
			key:     key,
			base:    prepareGroup(logger, baseGroup, opts),
			target:  prepareGroup(logger, targetGroup, opts),
			summary: &summary,
		}
		g.run(baseGroup.Keys(), targetGroup.Keys())
		if !g.compared {
			logger.Info().Str("key", key).Msg("No comparable runs in group")
			summary.Incomparable = append(summary.Incomparable, key)
		}
	}

	return summary
}

func prepareGroup(logger zerolog.Logger, group *model.RunSet, opts Options) map[string]*model.ResultRecord {
	records := make(map[string]*model.ResultRecord, group.Len())
	for id, record := range group.All() {
		if opts.GuessMetadata {
			var guessed bool
			record, guessed = WithGuessedMetadata(record)
			if guessed {
				logger.Debug().Str("run", id).Msg("Guessed oeselftest metadata")
			} else if record != nil && record.Configuration.Type() == model.TestTypeSelftest && record.Configuration.SelftestMetadata == nil {
				logger.Error().Str("run", id).Msg("Could not guess oeselftest metadata")
			}
		}
		records[id] = record
	}
	return records
}

type groupComparison struct {
	logger  zerolog.Logger
	key     string
	base    map[string]*model.ResultRecord
	target  map[string]*model.ResultRecord
	summary *Summary
	// set once any pair passed CanBeCompared
	compared bool
}

func configOf(record *model.ResultRecord) model.Configuration {
	if record == nil {
		return model.Configuration{}
	}
	return record.Configuration
}

func (g *groupComparison) compare(baseID, targetID string) (Pair, bool) {
	b, t := g.base[baseID], g.target[targetID]
	if !CanBeCompared(configOf(b), configOf(t)) {
		g.logger.Debug().Str("base", baseID).Str("target", targetID).Msg("Runs cannot be compared")
		return Pair{}, false
	}
	g.compared = true
	changes, text := CompareResult(g.logger, baseID, targetID, b, t)
	return Pair{Key: g.key, Base: baseID, Target: targetID, Changes: changes, Text: text}, true
}

func (g *groupComparison) run(baseIDs, targetIDs []string) {
	targets := slices.Clone(targetIDs)

	var unmatched []string
	for _, baseID := range baseIDs {
		matched := false
		for i, targetID := range targets {
			pair, ok := g.compare(baseID, targetID)
			if !ok || pair.HasRegressions() {
				continue
			}
			g.summary.Matches = append(g.summary.Matches, pair)
			targets = slices.Delete(targets, i, i+1)
			matched = true
			break
		}
		if !matched {
			unmatched = append(unmatched, baseID)
		}
	}

	for _, baseID := range unmatched {
		for _, targetID := range targets {
			pair, ok := g.compare(baseID, targetID)
			if ok && pair.HasRegressions() {
				g.summary.Regressions = append(g.summary.Regressions, pair)
			}
		}
	}
}
