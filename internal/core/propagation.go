package core

import (
	"time"

	"github.com/comalice/occupancyx/internal/hierarchy"
	"github.com/comalice/occupancyx/internal/primitives"
)

// propagator walks ancestor chains re-running the Transition Kernel with
// synthetic PROPAGATED events, enforcing the "contributes" and "lock"
// filters and the vacancy asymmetry rule (spec §4.2).
type propagator struct {
	idx    *hierarchy.Index
	states map[string]primitives.RuntimeState
}

// propagateFrom is called once right after locationID produced a real
// transition (tr != nil); it walks up the ancestor chain, possibly several
// levels, returning every additional Transition produced along the way in
// walk order (originating location's ancestors, bottom-up).
func (p *propagator) propagateFrom(locationID string, now time.Time) []primitives.Transition {
	var out []primitives.Transition

	childID := locationID
	for {
		childCfg, ok := p.idx.Config(childID)
		if !ok {
			return out
		}
		parentID := p.idx.Parent(childID)
		if parentID == "" {
			return out
		}
		if !childCfg.ContributesToParent {
			return out // the "backyard rule"
		}
		parentState := p.states[parentID]
		if parentState.LockState == primitives.LockedFrozen {
			return out
		}

		childState := p.states[childID]
		_, wasHeldByChild := parentState.ActiveHolds[childID]

		childIndefinite := len(childState.ActiveHolds) > 0 || (childState.IsOccupied && childState.OccupiedUntil == nil)
		childFiniteRemaining := childState.IsOccupied && childState.OccupiedUntil != nil && childState.OccupiedUntil.After(now)

		var synthetic primitives.OccupancyEvent
		merged := parentState
		propagate := false

		switch {
		case childIndefinite:
			synthetic = primitives.OccupancyEvent{
				LocationID: parentID,
				EventType:  primitives.Propagated,
				Category:   primitives.PropagatedCategory,
				SourceID:   childID,
				Timestamp:  now,
				HeldChild:  true,
			}
			merged = mergeOccupants(parentState, childState)
			propagate = true
		case wasHeldByChild:
			// Child released its last contributing hold (or vacated outright):
			// the parent's fudge-factor trailing timer must start even though
			// a plain vacancy never otherwise propagates (vacancy asymmetry).
			synthetic = primitives.OccupancyEvent{
				LocationID: parentID,
				EventType:  primitives.Propagated,
				Category:   primitives.PropagatedCategory,
				SourceID:   childID,
				Timestamp:  now,
				Release:    true,
			}
			propagate = true
		case childFiniteRemaining:
			remainder := childState.OccupiedUntil.Sub(now)
			synthetic = primitives.OccupancyEvent{
				LocationID: parentID,
				EventType:  primitives.Propagated,
				Category:   primitives.PropagatedCategory,
				SourceID:   childID,
				Timestamp:  now,
				Duration:   &remainder,
			}
			merged = mergeOccupants(parentState, childState)
			propagate = true
		}

		if !propagate {
			return out // vacancy asymmetry: a plain VACATED child stops here
		}

		parentCfg, _ := p.idx.Config(parentID)
		newParentState, parentTr := ApplyKernel(merged, synthetic, now, parentCfg)
		p.states[parentID] = newParentState
		if parentTr == nil {
			return out
		}
		parentTr.LocationID = parentID
		out = append(out, *parentTr)

		childID = parentID
	}
}

func mergeOccupants(parent, child primitives.RuntimeState) primitives.RuntimeState {
	merged := parent.Clone()
	for id := range child.ActiveOccupants {
		merged.ActiveOccupants[id] = struct{}{}
	}
	return merged
}
