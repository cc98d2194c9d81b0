package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDListWithWithout(t *testing.T) {
	l := IDList{"a", "b"}

	l, changed := l.With("c")
	assert.True(t, changed)
	assert.Equal(t, IDList{"a", "b", "c"}, l)

	l, changed = l.With("a")
	assert.False(t, changed)
	assert.Len(t, l, 3)

	l, changed = IDList{"a", "b", "a"}.Without("a")
	assert.True(t, changed)
	assert.Equal(t, IDList{"b"}, l)

	_, changed = l.Without("zzz")
	assert.False(t, changed)
}

func TestIDListValueAndScan(t *testing.T) {
	v, err := IDList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var l IDList
	require.NoError(t, l.Scan([]byte(`["x","y"]`)))
	assert.Equal(t, IDList{"x", "y"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
}

func TestCommunityJSONIncludesMemberCount(t *testing.T) {
	b, err := json.Marshal(Community{Name: "go", Members: IDList{"u1", "u2"}})
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.EqualValues(t, 2, out["memberCount"])
	assert.Equal(t, []interface{}{}, out["postIDs"])
	assert.Equal(t, "go", out["name"])
}
