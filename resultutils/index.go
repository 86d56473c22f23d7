package resultutils

import (
	"github.com/perfgo/resulttool/model"
)

// Index maps group keys to the runs filed under them. Groups and the runs
// within them keep their discovery order.
type Index = model.Ordered[*model.RunSet]

// Append files every record in runs into index under the key strategy
// derives from the record's configuration, and returns index. The index is
// mutated in place; a nil strategy means DefaultKey. A run identifier that
// already exists within its group is overwritten and keeps its position.
//
// Append does not synchronize access to index.
func Append(index *Index, runs *model.RunSet, strategy KeyStrategy) *Index {
	if index == nil {
		index = &Index{}
	}
	if strategy == nil {
		strategy = DefaultKey
	}
	if runs == nil {
		return index
	}

	for id, record := range runs.All() {
		var cfg model.Configuration
		if record != nil {
			cfg = record.Configuration
		}
		key := strategy(cfg)

		group, ok := index.Get(key)
		if !ok {
			group = &model.RunSet{}
			index.Set(key, group)
		}
		group.Set(id, record)
	}
	return index
}

// Flatten merges all groups of index into a single run set, in index order.
func Flatten(index *Index) *model.RunSet {
	out := &model.RunSet{}
	if index == nil {
		return out
	}
	for _, group := range index.All() {
		for id, record := range group.All() {
			out.Set(id, record)
		}
	}
	return out
}

// Filter returns the runs whose identifier is listed in ids. An empty ids
// list keeps every run.
func Filter(runs *model.RunSet, ids ...string) *model.RunSet {
	if len(ids) == 0 {
		return runs
	}
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	out := &model.RunSet{}
	if runs == nil {
		return out
	}
	for id, record := range runs.All() {
		if _, ok := wanted[id]; ok {
			out.Set(id, record)
		}
	}
	return out
}

// StripLogs returns a copy of runs without captured test logs. The input is
// left untouched.
func StripLogs(runs *model.RunSet) *model.RunSet {
	out := &model.RunSet{}
	if runs == nil {
		return out
	}
	for id, record := range runs.All() {
		if record == nil {
			out.Set(id, nil)
			continue
		}
		stripped := &model.ResultRecord{Configuration: record.Configuration}
		for testID, tc := range record.Result.All() {
			tc.Log = ""
			stripped.Result.Set(testID, tc)
		}
		out.Set(id, stripped)
	}
	return out
}
