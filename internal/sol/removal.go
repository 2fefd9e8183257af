package sol

import (
	"time"

	"github.com/sells-group/tradeline-audit/internal/model"
)

// The federal obsolescence window for most negative information: seven
// years anchored to the DOFD.
const obsolescenceYears = 7

// bureauOffsetDays captures how each bureau applies the window in
// practice. Experian removes at seven years flat; Equifax and TransUnion
// include the 180-day grace period before the reporting clock starts.
var bureauOffsetDays = map[model.Bureau]int{
	model.BureauExperian:   0,
	model.BureauEquifax:    180,
	model.BureauTransUnion: 180,
}

// ProjectRemoval computes the expected removal date for negative
// information from the DOFD and the furnishing bureau. Returns nil when
// the DOFD is absent or unparsable. Unknown bureaus use the bare
// seven-year window.
func ProjectRemoval(dofd string, bureau model.Bureau) *time.Time {
	start, ok := model.ParseDate(dofd)
	if !ok {
		return nil
	}
	removal := start.AddDate(obsolescenceYears, 0, 0)
	if offset, ok := bureauOffsetDays[bureau]; ok && offset > 0 {
		removal = removal.AddDate(0, 0, offset)
	}
	return &removal
}
