package engine

import "maps"

// QueuedStatuses converts the queue items belonging to job into synthetic
// statuses, preserving the queue's original relative order. The server lists
// more recently queued items first, and callers treat queued items as
// strictly newer than any recorded build.
func QueuedStatuses(q Queue, job string) []BuildStatus {
	var statuses []BuildStatus
	for _, item := range q.Items {
		if item.Task.Name == job {
			statuses = append(statuses, item.ToStatus(job))
		}
	}
	return statuses
}

// observedParams flattens the status's action parameters into a name→value
// map, keeping only parameters whose value is actually present. A hidden
// (sensitive) value can never satisfy a match, so nil-valued parameters are
// dropped here.
func observedParams(s BuildStatus) map[string]string {
	observed := make(map[string]string)
	for _, action := range s.Actions {
		for _, p := range action.Parameters {
			if p.Value == nil {
				continue
			}
			observed[p.Name] = *p.Value
		}
	}
	return observed
}

// MatchesParams reports whether the status was started with exactly the
// expected parameter set: same keys, same values, no extras, nothing
// missing. An empty expected map matches only statuses carrying no visible
// parameters at all.
func MatchesParams(s BuildStatus, expected map[string]string) bool {
	return maps.Equal(observedParams(s), expected)
}

// StatusIter is a finite, one-shot iterator over the merged status stream,
// yielding only statuses whose parameters match the expected set. It is not
// restartable: re-running the aggregation means re-issuing all fetches.
type StatusIter struct {
	statuses []BuildStatus
	expected map[string]string
	pos      int
}

// NewStatusIter wraps an already ordered status slice with the parameter
// filter. The filter is applied lazily as the iterator advances.
func NewStatusIter(statuses []BuildStatus, expected map[string]string) *StatusIter {
	return &StatusIter{statuses: statuses, expected: expected}
}

// Next returns the next matching status, or ok=false once exhausted.
func (it *StatusIter) Next() (BuildStatus, bool) {
	for it.pos < len(it.statuses) {
		s := it.statuses[it.pos]
		it.pos++
		if MatchesParams(s, it.expected) {
			return s, true
		}
	}
	return BuildStatus{}, false
}

// Collect drains the iterator into a slice.
func (it *StatusIter) Collect() []BuildStatus {
	var out []BuildStatus
	for s, ok := it.Next(); ok; s, ok = it.Next() {
		out = append(out, s)
	}
	return out
}
