package core

import (
	"time"

	"github.com/comalice/occupancyx/internal/primitives"
)

// nextExpiration implements the Scheduler Oracle: the minimum occupied_until
// among all locations whose active_holds is empty and whose occupied_until
// is a concrete instant. Indefinitely-held locations are skipped since they
// have no timer to wait for. Returns nil if no such location exists.
func nextExpiration(states map[string]primitives.RuntimeState) *time.Time {
	var min *time.Time
	for _, st := range states {
		if len(st.ActiveHolds) > 0 {
			continue
		}
		if st.OccupiedUntil == nil {
			continue
		}
		if min == nil || st.OccupiedUntil.Before(*min) {
			t := *st.OccupiedUntil
			min = &t
		}
	}
	return min
}
