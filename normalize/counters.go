package normalize

import (
	"strconv"
	"strings"

	"github.com/meikuraledutech/timeline"
	"github.com/tidwall/gjson"
)

const counterGroupsPath = "otherinfo.counters.counterGroups"

// CounterSet is everything synthesized from one parent's counters blob.
// GroupIDs lists the ids of Groups in source order, ready to be attached to
// the parent record.
type CounterSet struct {
	Groups   []timeline.CounterGroup
	Counters []timeline.Counter
	GroupIDs []string
}

// ExtractCounters hoists otherinfo.counters.counterGroups[].counters[] of raw
// into independent CounterGroup and Counter records owned by parent. A raw
// entity without counters yields an empty set.
func ExtractCounters(parent timeline.ParentRef, raw gjson.Result) (*CounterSet, error) {
	if !parent.Kind.HasCounters() || parent.ID == "" {
		return nil, timeline.ErrInvalidParent.GenWithStackByArgs(parent.Kind, parent.ID)
	}

	set := &CounterSet{GroupIDs: []string{}}
	groups := raw.Get(counterGroupsPath)
	if !groups.IsArray() {
		return set, nil
	}

	for gi, rg := range groups.Array() {
		name := strings.Clone(rg.Get("counterGroupName").String())
		if name == "" {
			return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(
				"counter group #" + strconv.Itoa(gi) + " of " + parent.String() + " has no name")
		}

		g := timeline.CounterGroup{
			ID:          timeline.CounterGroupID(parent.ID, name),
			Name:        name,
			DisplayName: strings.Clone(rg.Get("counterGroupDisplayName").String()),
			Parent:      parent,
			Counters:    []string{},
		}

		counters := rg.Get("counters")
		if counters.Exists() && counters.Type != gjson.Null && !counters.IsArray() {
			return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(
				"counters of group " + g.ID + " are not an array")
		}
		for ci, rc := range counters.Array() {
			cname := strings.Clone(rc.Get("counterName").String())
			if cname == "" {
				return nil, timeline.ErrShapeMismatch.GenWithStackByArgs(
					"counter #" + strconv.Itoa(ci) + " of group " + g.ID + " has no name")
			}
			c := timeline.Counter{
				ID:            timeline.CounterID(g.ID, cname),
				Name:          cname,
				DisplayName:   strings.Clone(rc.Get("counterDisplayName").String()),
				Value:         rc.Get("counterValue").Int(),
				ParentGroupID: g.ID,
			}
			g.Counters = append(g.Counters, c.ID)
			set.Counters = append(set.Counters, c)
		}

		set.Groups = append(set.Groups, g)
		set.GroupIDs = append(set.GroupIDs, g.ID)
	}

	return set, nil
}
