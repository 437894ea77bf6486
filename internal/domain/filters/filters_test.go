package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boscov/client/internal/domain/models"
)

func genre(id int, desc string) models.MovieGenre {
	return models.MovieGenre{Genre: models.Genre{ID: id, Description: desc}}
}

func testMovies() []models.Movie {
	return []models.Movie{
		{ID: 1, Name: "O Pagador de Promessas", Year: 1962, Status: models.StatusActive, Genres: []models.MovieGenre{genre(3, "Drama")}},
		{ID: 2, Name: "Cidade de Deus", Year: 2002, Status: models.StatusActive, Genres: []models.MovieGenre{genre(1, "Ação"), genre(3, "Drama")}},
		{ID: 3, Name: "O Auto da Compadecida", Year: 2000, Status: models.StatusInactive, Genres: []models.MovieGenre{genre(2, "Comédia")}},
	}
}

func moviePipeline() Pipeline[models.Movie] {
	return Pipeline[models.Movie]{
		DisplayField: func(m models.Movie) string { return m.Name },
		Numeric:      func(m models.Movie) float64 { return float64(m.Year) },
	}
}

func names(movies []models.Movie) []string {
	out := make([]string, len(movies))
	for i, m := range movies {
		out[i] = m.Name
	}
	return out
}

func TestApplyIdentity(t *testing.T) {
	movies := testMovies()
	got := moviePipeline().Apply(movies, State{})
	assert.Equal(t, names(movies), names(got), "empty state must preserve the input")
}

func TestApplySearch(t *testing.T) {
	p := moviePipeline()

	t.Run("case and accent insensitive", func(t *testing.T) {
		got := p.Apply(testMovies(), State{Query: "PROMESSAS"})
		require.Len(t, got, 1)
		assert.Equal(t, "O Pagador de Promessas", got[0].Name)
	})
	t.Run("substring on display field only", func(t *testing.T) {
		got := p.Apply(testMovies(), State{Query: "cidade"})
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].ID)
	})
	t.Run("whitespace-only query matches everything", func(t *testing.T) {
		got := p.Apply(testMovies(), State{Query: "   "})
		assert.Len(t, got, 3)
	})
	t.Run("no matches", func(t *testing.T) {
		got := p.Apply(testMovies(), State{Query: "tubarão"})
		assert.Empty(t, got)
	})
}

func TestApplySort(t *testing.T) {
	p := moviePipeline()

	t.Run("name directions are reverses", func(t *testing.T) {
		asc := p.Apply(testMovies(), State{Sort: SortNameAsc})
		desc := p.Apply(testMovies(), State{Sort: SortNameDesc})
		require.Len(t, asc, 3)
		for i := range asc {
			assert.Equal(t, asc[i].ID, desc[len(desc)-1-i].ID)
		}
		assert.Equal(t, []string{"Cidade de Deus", "O Auto da Compadecida", "O Pagador de Promessas"}, names(asc))
	})
	t.Run("numeric ascending", func(t *testing.T) {
		got := p.Apply(testMovies(), State{Sort: SortNumericAsc})
		assert.Equal(t, []string{"O Pagador de Promessas", "O Auto da Compadecida", "Cidade de Deus"}, names(got))
	})
	t.Run("numeric without accessor is a no-op", func(t *testing.T) {
		q := Pipeline[models.Movie]{DisplayField: func(m models.Movie) string { return m.Name }}
		got := q.Apply(testMovies(), State{Sort: SortNumericDesc})
		assert.Equal(t, names(testMovies()), names(got))
	})
}

func TestApplyPredicates(t *testing.T) {
	p := moviePipeline()

	t.Run("status and genre compose with AND", func(t *testing.T) {
		got := p.Apply(testMovies(), State{},
			ByStatus(StatusInactiveOnly, func(m models.Movie) bool { return m.Active() }),
			MovieHasGenre("comedia"),
		)
		require.Len(t, got, 1)
		assert.Equal(t, 3, got[0].ID)
	})
	t.Run("unset predicates never exclude", func(t *testing.T) {
		got := p.Apply(testMovies(), State{},
			ByStatus(StatusAll, func(m models.Movie) bool { return m.Active() }),
			MovieHasGenre(""),
		)
		assert.Len(t, got, 3)
	})
	t.Run("genre token matches accented description", func(t *testing.T) {
		got := p.Apply(testMovies(), State{}, MovieHasGenre("acao"))
		require.Len(t, got, 1)
		assert.Equal(t, "Cidade de Deus", got[0].Name)
	})
}

func TestByRole(t *testing.T) {
	users := []models.User{
		{ID: 1, Name: "Alice", Role: models.RoleAdmin},
		{ID: 2, Name: "Carlos", Role: models.RoleCommon},
	}
	p := Pipeline[models.User]{DisplayField: func(u models.User) string { return u.Name }}

	got := p.Apply(users, State{}, ByRole(models.RoleAdmin))
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].Name)

	assert.Nil(t, ByRole(""), "empty role is an unset filter")
}

func TestEvaluate(t *testing.T) {
	assert.Equal(t, OutcomeLoading, Evaluate(true, 0))
	assert.Equal(t, OutcomeLoading, Evaluate(true, 5), "loading wins even with stale rows")
	assert.Equal(t, OutcomeNoMatches, Evaluate(false, 0))
	assert.Equal(t, OutcomeOK, Evaluate(false, 2))
}
