package store

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePropertyStore is an in-memory PropertyStore counting writes.
type fakePropertyStore struct {
	values map[string]string
	sets   int
	getErr error
	setErr error
}

func newFakePropertyStore() *fakePropertyStore {
	return &fakePropertyStore{values: make(map[string]string)}
}

func (f *fakePropertyStore) Get(key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakePropertyStore) Set(key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.values[key] = value
	return nil
}

func TestLoadAbsentValueYieldsEmptySet(t *testing.T) {
	st := NewSeenSetStore(newFakePropertyStore(), 50)

	set, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
	assert.False(t, set.Dirty())
}

func TestLoadUnparsableValueYieldsEmptySet(t *testing.T) {
	props := newFakePropertyStore()
	props.values[seenSetKey] = "{not json["

	st := NewSeenSetStore(props, 50)
	set, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
}

func TestLoadStorageErrorPropagates(t *testing.T) {
	props := newFakePropertyStore()
	props.getErr = fmt.Errorf("connection refused")

	st := NewSeenSetStore(props, 50)
	_, err := st.Load()
	assert.Error(t, err)
}

func TestLoadRoundTrip(t *testing.T) {
	props := newFakePropertyStore()
	st := NewSeenSetStore(props, 50)

	set, err := st.Load()
	require.NoError(t, err)
	assert.True(t, set.Record("incident-1"))
	assert.True(t, set.Record("incident-2"))
	assert.False(t, set.Record("incident-1"))
	assert.True(t, set.Dirty())
	require.NoError(t, st.Persist(set))

	reloaded, err := st.Load()
	require.NoError(t, err)
	assert.True(t, reloaded.Contains("incident-1"))
	assert.True(t, reloaded.Contains("incident-2"))
	assert.False(t, reloaded.Contains("incident-3"))
	assert.False(t, reloaded.Dirty(), "loaded set starts clean")
}

func TestPersistTrimsToRetentionLimit(t *testing.T) {
	props := newFakePropertyStore()
	st := NewSeenSetStore(props, 50)

	set := NewSeenSet()
	for i := 0; i < 60; i++ {
		set.Record(fmt.Sprintf("incident-%d", i))
	}
	require.NoError(t, st.Persist(set))

	var stored []string
	require.NoError(t, json.Unmarshal([]byte(props.values[seenSetKey]), &stored))
	require.Len(t, stored, 50)

	// The 50 most recently recorded survive; the 10 oldest are gone
	assert.Equal(t, "incident-10", stored[0])
	assert.Equal(t, "incident-59", stored[49])
	assert.False(t, set.Contains("incident-9"))
	assert.True(t, set.Contains("incident-10"))
}

func TestRetentionAcrossPasses(t *testing.T) {
	props := newFakePropertyStore()
	st := NewSeenSetStore(props, 50)

	set := NewSeenSet()
	for i := 0; i < 40; i++ {
		set.Record(fmt.Sprintf("a-%d", i))
	}
	require.NoError(t, st.Persist(set))

	set, err := st.Load()
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		set.Record(fmt.Sprintf("b-%d", i))
	}
	require.NoError(t, st.Persist(set))

	var stored []string
	require.NoError(t, json.Unmarshal([]byte(props.values[seenSetKey]), &stored))
	require.Len(t, stored, 50)
	assert.Equal(t, "a-10", stored[0], "oldest retained id")
	assert.Equal(t, "b-19", stored[49], "newest id")
}

func TestCustomRetentionLimit(t *testing.T) {
	props := newFakePropertyStore()
	st := NewSeenSetStore(props, 3)

	set := NewSeenSet()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		set.Record(id)
	}
	require.NoError(t, st.Persist(set))

	var stored []string
	require.NoError(t, json.Unmarshal([]byte(props.values[seenSetKey]), &stored))
	assert.Equal(t, []string{"c", "d", "e"}, stored)
}
