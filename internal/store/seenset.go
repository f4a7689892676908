package store

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// seenSetKey is the single property slot holding the dedup ledger.
const seenSetKey = "seen_incident_ids"

// SeenSet is the in-memory form of the dedup ledger: a set of incident ids
// with insertion order retained for retention trimming.
type SeenSet struct {
	ids   map[string]struct{}
	order []string
	added int
}

// NewSeenSet creates an empty seen-set.
func NewSeenSet() *SeenSet {
	return &SeenSet{ids: make(map[string]struct{})}
}

// Contains reports whether the id has already been recorded.
func (s *SeenSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Record adds an id to the set. It reports whether the id was new.
func (s *SeenSet) Record(id string) bool {
	if s.Contains(id) {
		return false
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
	s.added++
	return true
}

// Dirty reports whether any id was recorded since the set was loaded.
func (s *SeenSet) Dirty() bool {
	return s.added > 0
}

// Len returns the number of ids in the set.
func (s *SeenSet) Len() int {
	return len(s.order)
}

// trim drops the oldest ids beyond the retention limit.
func (s *SeenSet) trim(limit int) {
	if limit <= 0 || len(s.order) <= limit {
		return
	}
	for _, id := range s.order[:len(s.order)-limit] {
		delete(s.ids, id)
	}
	s.order = s.order[len(s.order)-limit:]
}

// SeenSetStore persists the seen-set as a JSON array of ids under a single
// property key, trimmed to the retention limit.
type SeenSetStore struct {
	props     PropertyStore
	retention int
}

// NewSeenSetStore creates a seen-set store with the given retention limit.
func NewSeenSetStore(props PropertyStore, retention int) *SeenSetStore {
	return &SeenSetStore{props: props, retention: retention}
}

// Load reads the persisted seen-set. An absent or unparsable value yields an
// empty set; surviving a corrupted slot by re-notifying beats never running
// again. Only a storage-level failure is an error.
func (st *SeenSetStore) Load() (*SeenSet, error) {
	set := NewSeenSet()

	value, ok, err := st.props.Get(seenSetKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return set, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		logrus.Warnf("Discarding unparsable seen-set value: %v", err)
		return set, nil
	}

	for _, id := range ids {
		set.Record(id)
	}
	set.added = 0
	return set, nil
}

// Persist trims the set to the retention limit and writes it back to the
// single property slot. Callers are expected to skip Persist on a pass that
// recorded nothing; the write itself is unconditional.
func (st *SeenSetStore) Persist(set *SeenSet) error {
	set.trim(st.retention)

	data, err := json.Marshal(set.order)
	if err != nil {
		return err
	}
	return st.props.Set(seenSetKey, string(data))
}
