package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tamer/internal/game/catalog"
	"github.com/cory-johannsen/tamer/internal/game/creature"
	"github.com/cory-johannsen/tamer/internal/game/dice"
	"github.com/cory-johannsen/tamer/internal/game/inventory"
	"github.com/cory-johannsen/tamer/internal/game/trainer"
	"github.com/cory-johannsen/tamer/internal/storage/postgres"
	"github.com/cory-johannsen/tamer/internal/testutil"
)

func newTrainer(t *testing.T, name string) *trainer.Trainer {
	t.Helper()
	cat, err := catalog.Load(context.Background(), "../../../content/catalog", nil)
	require.NoError(t, err)
	f := creature.NewFactory(cat, nil, dice.NewSeededSource(5), nil)
	tr, err := trainer.New(name, "bulbasaur", f)
	require.NoError(t, err)
	return tr
}

func TestPool_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	assert.NoError(t, pc.Pool.Health(context.Background(), 5*time.Second))
}

func TestSaveRepository_RoundTrip(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	ctx := context.Background()

	tr := newTrainer(t, "Red")
	tr.AddExp(40)
	tr.UnlockedSkills = []string{"warlord_1"}
	tr.Party[0].Nickname = "Bulby"
	tr.Party[0].Confuse(2)
	inv := inventory.NewDefault()
	inv.Remove("potion", 2)

	require.NoError(t, repo.Save(ctx, tr, inv))

	gotTr, gotInv, err := repo.Load(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr, gotTr)
	assert.Equal(t, inv, gotInv)
	assert.Equal(t, 3, gotInv.Quantity("potion"))
}

func TestSaveRepository_SaveUpdatesInPlace(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	ctx := context.Background()

	tr := newTrainer(t, "Red")
	inv := inventory.NewDefault()
	require.NoError(t, repo.Save(ctx, tr, inv))

	tr.Name = "Blue"
	tr.AddExp(200)
	inv.Remove("capture_ball", 10)
	require.NoError(t, repo.Save(ctx, tr, inv))

	saves, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, saves, 1)
	assert.Equal(t, tr.ID, saves[0].TrainerID)
	assert.Equal(t, "Blue", saves[0].TrainerName)
	assert.Equal(t, tr.Level, saves[0].Level)

	_, gotInv, err := repo.Load(ctx, tr.ID)
	require.NoError(t, err)
	assert.False(t, gotInv.Has("capture_ball"))
}

func TestSaveRepository_LoadMissing(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	ctx := context.Background()

	_, _, err := repo.Load(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, postgres.ErrSaveNotFound))

	_, _, err = repo.Load(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, postgres.ErrSaveNotFound))
}

func TestSaveRepository_ListNewestFirst(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	ctx := context.Background()

	red := newTrainer(t, "Red")
	blue := newTrainer(t, "Blue")
	require.NoError(t, repo.Save(ctx, red, inventory.NewDefault()))
	require.NoError(t, repo.Save(ctx, blue, inventory.NewDefault()))

	saves, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, "Blue", saves[0].TrainerName)
	assert.Equal(t, "Red", saves[1].TrainerName)
	assert.False(t, saves[0].UpdatedAt.Before(saves[1].UpdatedAt))

	require.NoError(t, repo.Save(ctx, red, inventory.NewDefault()))
	saves, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Red", saves[0].TrainerName)
}

func TestSaveRepository_Delete(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	ctx := context.Background()

	tr := newTrainer(t, "Red")
	require.NoError(t, repo.Save(ctx, tr, inventory.NewDefault()))
	require.NoError(t, repo.Delete(ctx, tr.ID))

	_, _, err := repo.Load(ctx, tr.ID)
	assert.True(t, errors.Is(err, postgres.ErrSaveNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, tr.ID), postgres.ErrSaveNotFound))
}

func TestSaveRepository_SaveRejectsNonUUID(t *testing.T) {
	repo := postgres.NewSaveRepository(testutil.NewPool(t))
	tr := newTrainer(t, "Red")
	tr.ID = "trainer-1"
	assert.Error(t, repo.Save(context.Background(), tr, inventory.NewDefault()))
}
