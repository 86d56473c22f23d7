package regression

import (
	"slices"
	"strings"

	"github.com/perfgo/resulttool/model"
)

// Selftest configurations run by the autobuilder, used to recover selection
// metadata for results recorded before it was stored.
var selftestProfiles = map[string]model.SelectionMetadata{
	"trigger-build-posttrigger": {
		RunAllTests: boolPtr(false),
		RunTests:    []string{"buildoptions.SourceMirroring.test_yocto_source_mirror"},
	},
	"reproducible": {
		RunAllTests: boolPtr(false),
		RunTests:    []string{"reproducible"},
	},
	"arch-qemu-quick": {
		RunAllTests: boolPtr(true),
		SelectTags:  []string{"machine"},
	},
	"arch-qemu-full-x86-or-x86_64": {
		RunAllTests: boolPtr(true),
		SelectTags:  []string{"machine", "toolchain-system"},
	},
	"arch-qemu-full-others": {
		RunAllTests: boolPtr(true),
		SelectTags:  []string{"machine", "toolchain-user"},
	},
	"selftest": {
		RunAllTests: boolPtr(true),
		Skips:       []string{"distrodata.Distrodata.test_checkpkg", "buildoptions.SourceMirroring.test_yocto_source_mirror", "reproducible"},
		ExcludeTags: []string{"machine", "toolchain-system", "toolchain-user"},
	},
	"bringup": {
		RunAllTests: boolPtr(true),
		Skips:       []string{"distrodata.Distrodata.test_checkpkg", "buildoptions.SourceMirroring.test_yocto_source_mirror"},
		ExcludeTags: []string{"machine", "toolchain-system", "toolchain-user"},
	},
}

func boolPtr(b bool) *bool { return &b }

// GuessSelftestMetadata infers the selection metadata of an oeselftest run
// from the tests it contains. It returns nil when the results match none of
// the known selftest profiles. The returned metadata is owned by the caller.
func GuessSelftestMetadata(results *model.Results) *model.SelectionMetadata {
	if results == nil || results.Len() == 0 {
		return nil
	}

	var name string
	switch {
	case results.Len() == 1 && results.Has("buildoptions.SourceMirroring.test_yocto_source_mirror"):
		name = "trigger-build-posttrigger"
	case allTestIDs(results, func(id string) bool { return strings.HasPrefix(id, "reproducible") }):
		name = "reproducible"
	case allTestsTagged(results, "machine"):
		name = "arch-qemu-quick"
	case allTestsTagged(results, "machine", "toolchain-system"):
		name = "arch-qemu-full-x86-or-x86_64"
	case allTestsTagged(results, "machine", "toolchain-user"):
		name = "arch-qemu-full-others"
	case anyTestTagged(results, "machine", "toolchain-user", "toolchain-system"):
		return nil
	case allSkipped(results, "distrodata.Distrodata.test_checkpkg", "buildoptions.SourceMirroring.test_yocto_source_mirror", "reproducible"):
		name = "selftest"
	case allSkipped(results, "distrodata.Distrodata.test_checkpkg", "buildoptions.SourceMirroring.test_yocto_source_mirror"):
		name = "bringup"
	default:
		return nil
	}

	profile := selftestProfiles[name]
	if profile.RunAllTests != nil {
		profile.RunAllTests = boolPtr(*profile.RunAllTests)
	}
	if profile.Machine != nil {
		machine := *profile.Machine
		profile.Machine = &machine
	}
	profile.RunTests = slices.Clone(profile.RunTests)
	profile.Skips = slices.Clone(profile.Skips)
	profile.SelectTags = slices.Clone(profile.SelectTags)
	profile.ExcludeTags = slices.Clone(profile.ExcludeTags)
	return &profile
}

func allTestIDs(results *model.Results, pred func(string) bool) bool {
	for id := range results.All() {
		if !pred(id) {
			return false
		}
	}
	return true
}

func hasTag(tc model.TestCase, tags []string) bool {
	for _, tag := range tc.OETags {
		if slices.Contains(tags, tag) {
			return true
		}
	}
	return false
}

// ptest results carry no tags and are ignored.
func allTestsTagged(results *model.Results, tags ...string) bool {
	for id, tc := range results.All() {
		if !hasTag(tc, tags) && !strings.HasPrefix(id, "ptestresult") {
			return false
		}
	}
	return true
}

func anyTestTagged(results *model.Results, tags ...string) bool {
	for _, tc := range results.All() {
		if hasTag(tc, tags) {
			return true
		}
	}
	return false
}

func allSkipped(results *model.Results, prefixes ...string) bool {
	for id, tc := range results.All() {
		for _, prefix := range prefixes {
			if strings.HasPrefix(id, prefix) && tc.Status != model.OutcomeSkipped {
				return false
			}
		}
	}
	return true
}

// WithGuessedMetadata returns a copy of record carrying guessed selection
// metadata when record is an oeselftest run that lacks it. Otherwise record
// itself is returned. The input is never modified.
func WithGuessedMetadata(record *model.ResultRecord) (*model.ResultRecord, bool) {
	if record == nil || record.Configuration.Type() != model.TestTypeSelftest || record.Configuration.SelftestMetadata != nil {
		return record, false
	}
	guess := GuessSelftestMetadata(&record.Result)
	if guess == nil {
		return record, false
	}
	enriched := *record
	enriched.Configuration.SelftestMetadata = guess
	return &enriched, true
}
