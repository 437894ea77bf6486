package screens

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boscov/client/internal/api"
	"boscov/client/internal/domain/fields"
	"boscov/client/internal/domain/models"
	"boscov/client/internal/events"
	"boscov/client/internal/forms"
)

func serverMovie(t *testing.T, env *testEnv, id int) models.Movie {
	t.Helper()
	for _, m := range env.srv.Movies {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("movie %d not seeded", id)
	return models.Movie{}
}

// busRecorder collects published mutations for assertions.
type busRecorder struct {
	mu        sync.Mutex
	mutations []events.Mutation
}

func recordBus(bus *events.Bus) *busRecorder {
	rec := &busRecorder{}
	bus.Subscribe(func(m events.Mutation) {
		rec.mu.Lock()
		rec.mutations = append(rec.mutations, m)
		rec.mu.Unlock()
	})
	return rec
}

func (r *busRecorder) all() []events.Mutation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Mutation(nil), r.mutations...)
}

func TestRatingDialogCreateFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t, "carlos@boscov.dev")
	rec := recordBus(env.bus)

	d := NewRatingDialog(env.log, env.client, env.bus, env.validate, serverMovie(t, env, 42), user)
	assert.Equal(t, PhaseLoading, d.Phase())

	require.NoError(t, d.Open(context.Background()))
	assert.Equal(t, PhaseEditing, d.Phase(), "no prior rating opens straight into editing")
	assert.Nil(t, d.Existing())

	d.SetScore(8)
	d.SetComment("clássico")
	require.NoError(t, d.Submit(context.Background()))

	assert.Equal(t, PhaseViewing, d.Phase())
	require.NotNil(t, d.Existing())
	assert.Equal(t, fields.Score(8), d.Existing().Score)

	stored := env.srv.RatingFor(user.ID, 42)
	require.NotNil(t, stored)
	assert.Equal(t, fields.Score(8), stored.Score)
	assert.Equal(t, "clássico", stored.Comment)

	muts := rec.all()
	require.Len(t, muts, 1)
	assert.Equal(t, events.EntityMovie, muts[0].Entity)
	assert.Equal(t, 42, muts[0].ID)
	assert.InDelta(t, 8.0, muts[0].Fields["mediaAvaliacoes"].(float64), 1e-9)
}

func TestRatingDialogViewEditFlow(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t, "alice@boscov.dev")

	d := NewRatingDialog(env.log, env.client, env.bus, env.validate, serverMovie(t, env, 43), user)
	require.NoError(t, d.Open(context.Background()))

	assert.Equal(t, PhaseViewing, d.Phase(), "a stored rating opens read-only")
	require.NotNil(t, d.Existing())
	assert.Equal(t, fields.Score(7), d.Existing().Score)
	assert.Equal(t, forms.RatingForm{Score: 7, Comment: "muito bom"}, d.Form.Values())

	t.Run("unchanged resubmit refused", func(t *testing.T) {
		d.Edit()
		assert.Equal(t, PhaseEditing, d.Phase())
		err := d.Submit(context.Background())
		assert.ErrorIs(t, err, forms.ErrUnchanged)
		assert.Zero(t, env.srv.RequestCount(http.MethodPut, "/avaliacao/1/43"))
	})

	t.Run("edit issues an update, never a create", func(t *testing.T) {
		d.SetScore(9)
		require.NoError(t, d.Submit(context.Background()))

		stored := env.srv.RatingFor(user.ID, 43)
		require.NotNil(t, stored)
		assert.Equal(t, fields.Score(9), stored.Score)
		assert.Zero(t, env.srv.RequestCount(http.MethodPost, "/avaliacao"))
		assert.Equal(t, 1, env.srv.RequestCount(http.MethodPut, "/avaliacao/1/43"))
	})
}

func TestRatingDialogReopenAfterCreate(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t, "carlos@boscov.dev")
	movie := serverMovie(t, env, 42)

	first := NewRatingDialog(env.log, env.client, env.bus, env.validate, movie, user)
	require.NoError(t, first.Open(context.Background()))
	first.SetScore(6)
	require.NoError(t, first.Submit(context.Background()))
	first.Close()

	// Reopening queries again and finds the stored rating, so the second
	// submit updates instead of colliding with the composite key.
	second := NewRatingDialog(env.log, env.client, env.bus, env.validate, movie, user)
	require.NoError(t, second.Open(context.Background()))
	assert.Equal(t, PhaseViewing, second.Phase())

	second.Edit()
	second.SetScore(4)
	require.NoError(t, second.Submit(context.Background()))

	stored := env.srv.RatingFor(user.ID, 42)
	require.NotNil(t, stored)
	assert.Equal(t, fields.Score(4), stored.Score)
	assert.Equal(t, 1, env.srv.RequestCount(http.MethodPost, "/avaliacao"))
}

func TestRatingDialogDelete(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t, "alice@boscov.dev")
	rec := recordBus(env.bus)

	d := NewRatingDialog(env.log, env.client, env.bus, env.validate, serverMovie(t, env, 43), user)
	require.NoError(t, d.Open(context.Background()))

	require.NoError(t, d.Delete(context.Background()))
	assert.Nil(t, d.Existing())
	assert.Equal(t, PhaseEditing, d.Phase(), "deletion falls back to create mode")
	assert.Nil(t, env.srv.RatingFor(user.ID, 43))

	muts := rec.all()
	require.Len(t, muts, 1)
	assert.Zero(t, muts[0].Fields["mediaAvaliacoes"].(float64), "no ratings left")

	t.Run("second delete refused locally", func(t *testing.T) {
		before := env.srv.RequestCount(http.MethodDelete, "/avaliacao/1/43")
		err := d.Delete(context.Background())
		assert.ErrorIs(t, err, api.ErrNotFound)
		assert.Equal(t, before, env.srv.RequestCount(http.MethodDelete, "/avaliacao/1/43"))
	})
}

func TestRatingDialogDeleteRace(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t, "alice@boscov.dev")

	d := NewRatingDialog(env.log, env.client, env.bus, env.validate, serverMovie(t, env, 43), user)
	require.NoError(t, d.Open(context.Background()))

	// Another session removed the rating meanwhile.
	_, err := env.client.DeleteRating(context.Background(), user.ID, 43)
	require.NoError(t, err)

	err = d.Delete(context.Background())
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, "Avaliação já foi excluída ou não existe.", d.Error())
}

func TestRatingDialogInvalidNeverCalls(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t, "carlos@boscov.dev")

	d := NewRatingDialog(env.log, env.client, env.bus, env.validate, serverMovie(t, env, 42), user)
	require.NoError(t, d.Open(context.Background()))

	d.SetScore(3)
	d.SetComment(string(make([]byte, 501)))
	err := d.Submit(context.Background())
	assert.ErrorIs(t, err, forms.ErrInvalid)
	assert.Contains(t, d.Form.FieldErrors(), "comentario")
	assert.Zero(t, env.srv.RequestCount(http.MethodPost, "/avaliacao"))
}

func TestRatingDialogCloseDropsLateResult(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t, "carlos@boscov.dev")
	rec := recordBus(env.bus)

	d := NewRatingDialog(env.log, env.client, env.bus, env.validate, serverMovie(t, env, 42), user)
	require.NoError(t, d.Open(context.Background()))
	d.SetScore(5)

	d.Close()
	require.NoError(t, d.Submit(context.Background()))

	assert.Nil(t, d.Existing(), "a completion after teardown must not mutate the dialog")
	assert.Empty(t, rec.all(), "torn-down dialogs publish nothing")
}

func TestRatingDialogOpenUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	user := env.signIn(t, "carlos@boscov.dev")
	env.srv.ForcedStatus = http.StatusUnauthorized

	d := NewRatingDialog(env.log, env.client, env.bus, env.validate, serverMovie(t, env, 42), user)
	err := d.Open(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, 1, env.unauthorizedCount())
}
