package screens

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boscov/client/internal/api"
	"boscov/client/internal/domain/filters"
	"boscov/client/internal/domain/models"
	"boscov/client/internal/forms"
)

func TestAdminMoviesForbidden(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, "carlos@boscov.dev")

	s := NewAdminMovies(env.log, env.client, env.sessions, env.validate)
	err := s.Load(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, env.srv.RequestCount(http.MethodGet, "/filmes"), "the gate trips before any fetch")
}

func TestAdminMoviesFilters(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, "alice@boscov.dev")
	s := NewAdminMovies(env.log, env.client, env.sessions, env.validate)
	require.NoError(t, s.Load(context.Background()))

	visible, outcome := s.Visible()
	assert.Equal(t, filters.OutcomeOK, outcome)
	assert.Len(t, visible, 3, "management sees inactive records too")

	t.Run("inactive comedies", func(t *testing.T) {
		s.SetStatus(filters.StatusInactiveOnly)
		s.SetGenre("comedia")
		visible, outcome := s.Visible()
		require.Equal(t, filters.OutcomeOK, outcome)
		require.Len(t, visible, 1)
		assert.Equal(t, "Auto da Compadecida", visible[0].Name)
	})

	t.Run("inactive dramas have no matches", func(t *testing.T) {
		s.SetGenre("drama")
		_, outcome := s.Visible()
		assert.Equal(t, filters.OutcomeNoMatches, outcome)
	})

	t.Run("back to all", func(t *testing.T) {
		s.SetStatus(filters.StatusAll)
		s.SetGenre("")
		visible, _ := s.Visible()
		assert.Len(t, visible, 3)
	})
}

func TestAdminMoviesCreate(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, "alice@boscov.dev")
	s := NewAdminMovies(env.log, env.client, env.sessions, env.validate)
	require.NoError(t, s.Load(context.Background()))

	s.OpenEditor(nil)
	assert.False(t, s.Form.Editing())
	s.Form.Update(func(f *forms.MovieForm) {
		*f = forms.MovieForm{
			Name:           "Central do Brasil",
			Director:       "Walter Salles",
			Year:           1998,
			Duration:       113,
			Producer:       "VideoFilmes",
			Classification: "Livre",
			Poster:         "https://posters.example/central.jpg",
			GenreIDs:       []int{3},
		}
	})
	require.NoError(t, s.Save(context.Background()))

	visible, _ := s.Visible()
	assert.Len(t, visible, 4, "the list re-fetches after a save")
	assert.Equal(t, 2, env.srv.RequestCount(http.MethodGet, "/filmes"))
}

func TestAdminMoviesEdit(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, "alice@boscov.dev")
	s := NewAdminMovies(env.log, env.client, env.sessions, env.validate)
	require.NoError(t, s.Load(context.Background()))

	visible, _ := s.Visible()
	var target models.Movie
	for _, m := range visible {
		if m.ID == 42 {
			target = m
		}
	}
	require.NotZero(t, target.ID)

	s.OpenEditor(&target)
	assert.True(t, s.Form.Editing())

	t.Run("unchanged save refused", func(t *testing.T) {
		err := s.Save(context.Background())
		assert.ErrorIs(t, err, forms.ErrUnchanged)
		assert.Zero(t, env.srv.RequestCount(http.MethodPut, "/filme/42"))
	})

	t.Run("changed save updates", func(t *testing.T) {
		s.Form.Update(func(f *forms.MovieForm) { f.Duration = 99 })
		require.NoError(t, s.Save(context.Background()))
		assert.Equal(t, 99, serverMovie(t, env, 42).Duration)
	})

	t.Run("genre reorder alone is not a change", func(t *testing.T) {
		visible, _ := s.Visible()
		for _, m := range visible {
			if m.ID == 43 {
				s.OpenEditor(&m)
			}
		}
		s.Form.Update(func(f *forms.MovieForm) { f.GenreIDs = []int{3, 1} })
		err := s.Save(context.Background())
		assert.ErrorIs(t, err, forms.ErrUnchanged)
	})
}

func TestAdminMoviesDuplicateCreate(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, "alice@boscov.dev")
	s := NewAdminMovies(env.log, env.client, env.sessions, env.validate)
	require.NoError(t, s.Load(context.Background()))

	s.OpenEditor(nil)
	s.Form.Update(func(f *forms.MovieForm) {
		*f = forms.MovieForm{
			Name:           "Cidade de Deus",
			Director:       "Fernando Meirelles",
			Year:           2002,
			Duration:       130,
			Producer:       "O2 Filmes",
			Classification: "18+",
			Poster:         "https://posters.example/cidade.jpg",
			GenreIDs:       []int{1, 3},
		}
	})
	err := s.Save(context.Background())
	assert.ErrorIs(t, err, api.ErrConflict)
	assert.Equal(t, forms.StateFailed, s.Form.State())
	assert.NotEmpty(t, s.Form.GeneralError())
}

func TestAdminMoviesDeleteAndReactivate(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t, "alice@boscov.dev")
	s := NewAdminMovies(env.log, env.client, env.sessions, env.validate)
	require.NoError(t, s.Load(context.Background()))

	t.Run("cancel issues nothing", func(t *testing.T) {
		s.AskDelete(42)
		s.CancelDelete()
		require.NoError(t, s.ConfirmDelete(context.Background()))
		assert.Zero(t, env.srv.RequestCount(http.MethodDelete, "/filme/42"))
	})

	t.Run("confirm soft-deletes", func(t *testing.T) {
		s.AskDelete(42)
		require.NoError(t, s.ConfirmDelete(context.Background()))
		assert.Equal(t, models.StatusInactive, serverMovie(t, env, 42).Status)
	})

	t.Run("reactivate restores", func(t *testing.T) {
		require.NoError(t, s.Reactivate(context.Background(), 42))
		assert.Equal(t, models.StatusActive, serverMovie(t, env, 42).Status)
	})

	t.Run("missing movie", func(t *testing.T) {
		s.AskDelete(999)
		err := s.ConfirmDelete(context.Background())
		assert.ErrorIs(t, err, api.ErrNotFound)
		assert.Equal(t, "Filme não encontrado.", s.Error())
	})
}
