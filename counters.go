package timeline

import (
	"context"

	"github.com/pingcap/errors"
)

// CounterValue looks up a single counter of parent by group and counter
// name. A missing group or counter reads as 0.
func CounterValue(ctx context.Context, s Store, parent ParentRef, groupName, counterName string) (int64, error) {
	groupID := CounterGroupID(parent.ID, groupName)
	g, err := s.GetCounterGroup(ctx, groupID)
	if err != nil {
		return 0, errors.Trace(err)
	}
	if g == nil || g.Parent != parent {
		return 0, nil
	}

	counters, err := s.ListCounters(ctx, groupID)
	if err != nil {
		return 0, errors.Trace(err)
	}
	id := CounterID(groupID, counterName)
	for _, c := range counters {
		if c.ID == id {
			return c.Value, nil
		}
	}
	return 0, nil
}
