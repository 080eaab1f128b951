package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry()

	all := reg.AllEntities()
	require.Len(t, all, 10)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Name, all[i].Name)
	}

	events := reg.GetEntity(Events)
	require.NotNil(t, events)
	assert.False(t, events.HasField("location"), "events are district-only")
	assert.True(t, events.HasField("district"))
	assert.Equal(t, "slug", events.SlugField())

	tips := reg.GetEntity(Tips)
	require.NotNil(t, tips)
	assert.Equal(t, "", tips.SlugField())

	assert.Nil(t, reg.GetEntity("users"))
}

func TestRegistry_LoadReplaces(t *testing.T) {
	reg := NewDefaultRegistry()
	reg.Load([]*Entity{{Name: "blogs", Table: "posts"}})

	assert.Nil(t, reg.GetEntity(Destinations))
	require.NotNil(t, reg.GetEntity("blogs"))
	assert.Equal(t, "posts", reg.GetEntity("blogs").Table)
}
