package photostore_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitmyear-backend/internal/models"
	"fitmyear-backend/internal/photostore"
)

func newStore(t *testing.T) *photostore.Store {
	t.Helper()
	store, err := photostore.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestStore_SaveAndList(t *testing.T) {
	store := newStore(t)

	photo, err := store.Save("user-1", "/media/a.jpg", models.AngleFront)
	require.NoError(t, err)
	assert.NotEmpty(t, photo.ID)
	assert.Equal(t, models.AngleFront, photo.Angle)

	photos, err := store.List("user-1")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, photo.ID, photos[0].ID)
	assert.Equal(t, "/media/a.jpg", photos[0].URI)
}

func TestStore_ListEmptyOwner(t *testing.T) {
	store := newStore(t)

	photos, err := store.List("nobody")
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestStore_CapacityLimit(t *testing.T) {
	store := newStore(t)

	for i := 0; i < photostore.MaxPhotos; i++ {
		_, err := store.Save("user-1", fmt.Sprintf("/media/%d.jpg", i), "")
		require.NoError(t, err)
	}

	_, err := store.Save("user-1", "/media/overflow.jpg", "")
	assert.ErrorIs(t, err, photostore.ErrCapacityExceeded)

	// The rejected save must leave the set unchanged.
	count, err := store.Count("user-1")
	require.NoError(t, err)
	assert.Equal(t, photostore.MaxPhotos, count)
}

func TestStore_DuplicateAngleRejected(t *testing.T) {
	store := newStore(t)

	_, err := store.Save("user-1", "/media/a.jpg", models.AngleSide)
	require.NoError(t, err)

	_, err = store.Save("user-1", "/media/b.jpg", models.AngleSide)
	assert.ErrorIs(t, err, photostore.ErrDuplicateAngle)

	// Photos without an angle never collide.
	_, err = store.Save("user-1", "/media/c.jpg", "")
	require.NoError(t, err)
	_, err = store.Save("user-1", "/media/d.jpg", "")
	require.NoError(t, err)
}

func TestStore_InvalidAngle(t *testing.T) {
	store := newStore(t)

	_, err := store.Save("user-1", "/media/a.jpg", models.EarAngle("sideways"))
	assert.ErrorIs(t, err, photostore.ErrInvalidAngle)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	store := newStore(t)

	photo, err := store.Save("user-1", "/media/a.jpg", "")
	require.NoError(t, err)

	require.NoError(t, store.Delete("user-1", photo.ID))
	// Deleting a photo that no longer exists is not an error.
	require.NoError(t, store.Delete("user-1", photo.ID))

	count, err := store.Count("user-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_ClearRemovesEverything(t *testing.T) {
	store := newStore(t)

	for i := 0; i < 3; i++ {
		_, err := store.Save("user-1", fmt.Sprintf("/media/%d.jpg", i), "")
		require.NoError(t, err)
	}

	require.NoError(t, store.Clear("user-1"))
	require.NoError(t, store.Clear("user-1"))

	photos, err := store.List("user-1")
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestStore_OwnersAreIsolated(t *testing.T) {
	store := newStore(t)

	_, err := store.Save("user-1", "/media/a.jpg", models.AngleFront)
	require.NoError(t, err)
	_, err = store.Save("user-2", "/media/b.jpg", models.AngleFront)
	require.NoError(t, err)

	require.NoError(t, store.Clear("user-1"))

	count, err := store.Count("user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := photostore.NewStore(dir)
	require.NoError(t, err)

	saved, err := store.Save("user-1", "/media/a.jpg", models.AngleBack)
	require.NoError(t, err)

	reopened, err := photostore.NewStore(dir)
	require.NoError(t, err)

	photos, err := reopened.List("user-1")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, saved.ID, photos[0].ID)
}
