package core

import (
	"time"

	"github.com/comalice/occupancyx/internal/primitives"
)

// sweep implements the Timeout Sweep: for every location in deterministic
// (sorted) order, if it is occupied, has a concrete occupied_until at or
// before now, and both active_holds and active_occupants are empty, run
// Vacancy Cleanup and emit VACATED. Vacancy never propagates (§4.2's
// asymmetry); a parent may still be vacated in the same call because its
// own timer independently ran out.
func (p *propagator) sweep(now time.Time) []primitives.Transition {
	var out []primitives.Transition
	for _, id := range p.idx.AllIDs() {
		st := p.states[id]
		if !st.IsOccupied {
			continue
		}
		if st.OccupiedUntil == nil || st.OccupiedUntil.After(now) {
			continue
		}
		if len(st.ActiveHolds) != 0 || len(st.ActiveOccupants) != 0 {
			continue
		}
		old := st
		vacated := VacancyCleanup(st)
		p.states[id] = vacated
		out = append(out, primitives.Transition{
			LocationID: id,
			Old:        old,
			New:        vacated,
			Kind:       primitives.Vacated,
		})
	}
	return out
}
