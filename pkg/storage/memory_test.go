package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   string `json:"id"`
	Size int    `json:"size"`
}

func TestMemoryRepository_PutGetList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, repo.Put(ctx, KindItem, "b", []byte(`{"id":"b"}`)))
	require.NoError(t, repo.Put(ctx, KindItem, "a", []byte(`{"id":"a"}`)))
	require.NoError(t, repo.Put(ctx, KindItem, "b", []byte(`{"id":"b","v":2}`)))

	ids, err := repo.List(ctx, KindItem)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids, "re-put keeps original position")

	data, err := repo.Get(ctx, KindItem, "b")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"b","v":2}`, string(data))

	data, err = repo.Get(ctx, KindItem, "missing")
	assert.NoError(t, err)
	assert.Nil(t, data)

	ids, err = repo.List(ctx, KindMob)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryRepository_KindsAreSeparate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Put(ctx, KindItem, "x", []byte(`1`)))

	data, err := repo.Get(ctx, KindNPC, "x")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemoryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Put(ctx, KindCharacter, "aria", []byte(`{}`)))
	require.NoError(t, repo.Put(ctx, KindCharacter, "brom", []byte(`{}`)))

	removed, err := repo.Delete(ctx, KindCharacter, "aria")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, KindCharacter, "aria")
	require.NoError(t, err)
	assert.False(t, removed)

	ids, _ := repo.List(ctx, KindCharacter)
	assert.Equal(t, []string{"brom"}, ids)
}

func TestMemoryRepository_Validation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	assert.Error(t, repo.Put(ctx, KindItem, "", []byte(`{}`)))
	assert.Error(t, repo.Put(ctx, KindItem, "x", nil))
}

func TestMemoryRepository_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Put(ctx, KindItem, "x", []byte(`"abc"`)))

	data, _ := repo.Get(ctx, KindItem, "x")
	data[1] = 'z'

	again, _ := repo.Get(ctx, KindItem, "x")
	assert.Equal(t, `"abc"`, string(again))
}

func TestMemoryRepository_Ping(t *testing.T) {
	repo := NewMemoryRepository()
	assert.NoError(t, repo.Ping(context.Background()))

	repo.SetPingError(errors.New("down"))
	assert.EqualError(t, repo.Ping(context.Background()), "down")
}

func TestLoadAndSave(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	require.NoError(t, Save(ctx, repo, KindItem, "w1", widget{ID: "w1", Size: 3}))

	w, err := Load[widget](ctx, repo, KindItem, "w1")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, 3, w.Size)

	w, err = Load[widget](ctx, repo, KindItem, "nope")
	assert.NoError(t, err)
	assert.Nil(t, w)

	require.NoError(t, repo.Put(ctx, KindItem, "bad", []byte(`{not json`)))
	_, err = Load[widget](ctx, repo, KindItem, "bad")
	assert.Error(t, err)
}
