package domain

import "sort"

// ReadState is the set of article ids marked as read
type ReadState map[string]struct{}

// NewReadState makes a read state from a list of ids
func NewReadState(ids ...string) ReadState {
	rs := make(ReadState, len(ids))
	for _, id := range ids {
		rs[id] = struct{}{}
	}
	return rs
}

// Has reports whether id is marked read
func (rs ReadState) Has(id string) bool {
	_, ok := rs[id]
	return ok
}

// Toggle returns a copy of the read state with id membership flipped.
// The receiver is not modified.
func (rs ReadState) Toggle(id string) ReadState {
	res := make(ReadState, len(rs)+1)
	for k := range rs {
		res[k] = struct{}{}
	}
	if _, ok := res[id]; ok {
		delete(res, id)
		return res
	}
	res[id] = struct{}{}
	return res
}

// IDs returns read ids in sorted order
func (rs ReadState) IDs() []string {
	res := make([]string, 0, len(rs))
	for id := range rs {
		res = append(res, id)
	}
	sort.Strings(res)
	return res
}
