package regression

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/perfgo/resulttool/model"
)

// List-valued selection metadata compares as an unordered collection; a nil
// list still only equals nil.
var metadataCmpOpts = []cmp.Option{
	cmpopts.SortSlices(func(a, b string) bool { return a < b }),
}

// CanBeCompared reports whether results produced with the base and target
// configurations describe the same logical run. It never looks at the
// results themselves.
func CanBeCompared(base, target model.Configuration) bool {
	if base.TestType != target.TestType {
		return false
	}

	switch base.Type() {
	case model.TestTypeSelftest:
		if !metadataMatches(base.SelftestMetadata, target.SelftestMetadata) {
			return false
		}
	case model.TestTypeRuntime, model.TestTypeOther:
		// selection metadata only narrows oeselftest runs
	}

	return base.Machine == target.Machine
}

func metadataMatches(base, target *model.SelectionMetadata) bool {
	if base == nil || target == nil {
		return base == nil && target == nil
	}
	return cmp.Equal(*base, *target, metadataCmpOpts...)
}
