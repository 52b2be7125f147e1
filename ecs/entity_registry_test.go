package ecs_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/hotbean/ecs"
)

func TestEntityRegistryCreate(t *testing.T) {
	r := ecs.NewEntityRegistry(nil)

	e0, err := r.Create()
	require.NoError(t, err)
	e1, err := r.Create()
	require.NoError(t, err)

	assert.Equal(t, ecs.Entity(0), e0)
	assert.Equal(t, ecs.Entity(1), e1)
	assert.Equal(t, 2, r.Len())
	assert.True(t, r.IsAlive(e0))

	sig, err := r.Signature(e0)
	require.NoError(t, err)
	assert.True(t, sig.IsEmpty(), "new entities have an empty signature")
}

func TestEntityRegistryFIFOReuse(t *testing.T) {
	r := ecs.NewEntityRegistry(nil)
	for i := 0; i < 3; i++ {
		_, err := r.Create()
		require.NoError(t, err)
	}

	_, err := r.Destroy(1)
	require.NoError(t, err)
	_, err = r.Destroy(0)
	require.NoError(t, err)

	// ids 3.. were freed before 1 and 0, so they come first
	next, err := r.Create()
	require.NoError(t, err)
	assert.Equal(t, ecs.Entity(3), next)
}

func TestEntityRegistryCapacity(t *testing.T) {
	r := ecs.NewEntityRegistry(nil)
	for i := 0; i < ecs.MaxEntities; i++ {
		_, err := r.Create()
		require.NoError(t, err)
	}
	assert.Equal(t, ecs.MaxEntities, r.Len())

	_, err := r.Create()
	assert.True(t, errors.Is(err, ecs.ErrTooManyEntities))

	destroyed, err := r.Destroy(42)
	require.NoError(t, err)
	require.True(t, destroyed)

	e, err := r.Create()
	require.NoError(t, err)
	assert.Equal(t, ecs.Entity(42), e)
}

func TestEntityRegistryDestroy(t *testing.T) {
	r := ecs.NewEntityRegistry(nil)
	e, err := r.Create()
	require.NoError(t, err)

	_, err = r.SetSignature(e, 3, true)
	require.NoError(t, err)

	destroyed, err := r.Destroy(e)
	require.NoError(t, err)
	assert.True(t, destroyed)
	assert.False(t, r.IsAlive(e))

	sig, err := r.Signature(e)
	require.NoError(t, err)
	assert.True(t, sig.IsEmpty(), "destroyed entities have an empty signature")

	t.Run("dead entity is a no-op", func(t *testing.T) {
		destroyed, err := r.Destroy(e)
		require.NoError(t, err)
		assert.False(t, destroyed)
		assert.Equal(t, 0, r.Len())
	})

	t.Run("out of range is rejected", func(t *testing.T) {
		_, err := r.Destroy(ecs.MaxEntities)
		assert.True(t, errors.Is(err, ecs.ErrEntityOutOfRange))
	})
}

func TestEntityRegistrySignature(t *testing.T) {
	r := ecs.NewEntityRegistry(nil)
	e, err := r.Create()
	require.NoError(t, err)

	sig, err := r.SetSignature(e, 2, true)
	require.NoError(t, err)
	assert.True(t, sig.Test(2))
	assert.True(t, r.HasComponent(e, 2))

	sig, err = r.SetSignature(e, 2, false)
	require.NoError(t, err)
	assert.False(t, sig.Test(2))
	assert.False(t, r.HasComponent(e, 2))

	_, err = r.SetSignature(ecs.MaxEntities+1, 0, true)
	assert.True(t, errors.Is(err, ecs.ErrEntityOutOfRange))
	_, err = r.Signature(ecs.MaxEntities)
	assert.True(t, errors.Is(err, ecs.ErrEntityOutOfRange))
}

func TestEntityRegistryAll(t *testing.T) {
	r := ecs.NewEntityRegistry(nil)
	for i := 0; i < 5; i++ {
		_, err := r.Create()
		require.NoError(t, err)
	}
	_, err := r.Destroy(2)
	require.NoError(t, err)

	assert.Equal(t, []ecs.Entity{0, 1, 3, 4}, slices.Collect(r.All()))

	r.DestroyAll()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, slices.Collect(r.All()))

	e, err := r.Create()
	require.NoError(t, err)
	assert.Equal(t, ecs.Entity(0), e, "DestroyAll requeues ids in order")
}
