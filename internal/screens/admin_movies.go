package screens

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"boscov/client/internal/api"
	"boscov/client/internal/domain/filters"
	"boscov/client/internal/domain/models"
	"boscov/client/internal/forms"
	"boscov/client/internal/session"

	govalidator "github.com/go-playground/validator/v10"
)

type AdminMoviesFilter struct {
	Query  string
	Status filters.StatusFilter
	Genre  string
	Sort   filters.Sort
}

// AdminMovies is the movie management list: full catalog including inactive
// records, soft-delete with a confirm step, reactivation, and the create/edit
// dialog.
type AdminMovies struct {
	log      *slog.Logger
	api      *api.Client
	sessions *session.Manager

	pipeline filters.Pipeline[models.Movie]
	Form     *forms.Controller[forms.MovieForm]

	mu            sync.Mutex
	movies        []models.Movie
	genres        []models.Genre
	loading       bool
	errMsg        string
	filter        AdminMoviesFilter
	editing       *models.Movie
	pendingDelete *int
}

func NewAdminMovies(log *slog.Logger, client *api.Client, sessions *session.Manager, validate *govalidator.Validate) *AdminMovies {
	return &AdminMovies{
		log:      log,
		api:      client,
		sessions: sessions,
		loading:  true,
		pipeline: filters.Pipeline[models.Movie]{
			DisplayField: func(m models.Movie) string { return m.Name },
			Numeric:      func(m models.Movie) float64 { return float64(m.Year) },
		},
		Form: forms.NewController(validate, forms.MovieForm{}, false),
	}
}

func (s *AdminMovies) Load(ctx context.Context) error {
	const op = "screens.AdminMovies.Load"
	log := s.log.With("op", op)
	if u := s.sessions.User(); u == nil || !u.IsAdmin() {
		return ErrForbidden
	}
	movies, err := s.api.ListMovies(ctx, api.ListMoviesParams{})
	if err != nil {
		log.Error("loading movies failed", "error", err.Error())
		s.fail(err)
		return err
	}
	genres, err := s.api.ListGenres(ctx)
	if err != nil {
		log.Error("loading genres failed", "error", err.Error())
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.movies = movies
	s.genres = genres
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

// refresh re-fetches the list after a mutation, the way the management
// screens always do.
func (s *AdminMovies) refresh(ctx context.Context) error {
	movies, err := s.api.ListMovies(ctx, api.ListMoviesParams{})
	if err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.movies = movies
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

func (s *AdminMovies) fail(err error) {
	s.mu.Lock()
	s.loading = false
	s.errMsg = loadErrMsg(err, fallbackLoadMsg)
	s.mu.Unlock()
}

func (s *AdminMovies) SetQuery(q string) {
	s.mu.Lock()
	s.filter.Query = q
	s.mu.Unlock()
}

func (s *AdminMovies) SetStatus(f filters.StatusFilter) {
	s.mu.Lock()
	s.filter.Status = f
	s.mu.Unlock()
}

func (s *AdminMovies) SetGenre(token string) {
	s.mu.Lock()
	s.filter.Genre = token
	s.mu.Unlock()
}

func (s *AdminMovies) SetSort(sort filters.Sort) {
	s.mu.Lock()
	s.filter.Sort = sort
	s.mu.Unlock()
}

func (s *AdminMovies) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *AdminMovies) Genres() []models.Genre {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Genre(nil), s.genres...)
}

func (s *AdminMovies) Visible() ([]models.Movie, filters.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil, filters.OutcomeLoading
	}
	derived := s.pipeline.Apply(s.movies,
		filters.State{Query: s.filter.Query, Sort: s.filter.Sort},
		filters.ByStatus(s.filter.Status, func(m models.Movie) bool { return m.Active() }),
		filters.MovieHasGenre(s.filter.Genre),
	)
	return derived, filters.Evaluate(false, len(derived))
}

// OpenEditor seeds the dialog: from the movie when editing, from defaults
// when creating. Each open starts from a fresh seed, nothing leaks between
// entities.
func (s *AdminMovies) OpenEditor(m *models.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m == nil {
		s.editing = nil
		s.Form.Reset(forms.MovieForm{}, false)
		return
	}
	cp := *m
	s.editing = &cp
	s.Form.Reset(forms.MovieFormFrom(m), true)
}

func (s *AdminMovies) editingMovie() *models.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

func (s *AdminMovies) Save(ctx context.Context) error {
	err := s.Form.Submit(ctx, func(ctx context.Context, v forms.MovieForm) error {
		in := api.MovieInput{
			Name:           v.Name,
			Director:       v.Director,
			Year:           v.Year,
			Duration:       v.Duration,
			Producer:       v.Producer,
			Classification: v.Classification,
			Poster:         v.Poster,
			GenreIDs:       v.GenreIDs,
		}
		if editing := s.editingMovie(); editing != nil {
			_, err := s.api.UpdateMovie(ctx, editing.ID, in)
			return err
		}
		_, err := s.api.CreateMovie(ctx, in)
		return err
	})
	if err != nil {
		return err
	}
	return s.refresh(ctx)
}

// AskDelete records the pending soft-delete for the confirm dialog.
func (s *AdminMovies) AskDelete(id int) {
	s.mu.Lock()
	s.pendingDelete = &id
	s.mu.Unlock()
}

func (s *AdminMovies) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = nil
	s.mu.Unlock()
}

func (s *AdminMovies) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pendingDelete
	s.pendingDelete = nil
	s.mu.Unlock()
	if pending == nil {
		return nil
	}
	if err := s.api.DeleteMovie(ctx, *pending); err != nil {
		s.mu.Lock()
		if errors.Is(err, api.ErrNotFound) {
			s.errMsg = "Filme não encontrado."
		} else if !errors.Is(err, api.ErrUnauthorized) {
			s.errMsg = api.Message(err, fallbackDeleteMsg)
		}
		s.mu.Unlock()
		return err
	}
	return s.refresh(ctx)
}

func (s *AdminMovies) Reactivate(ctx context.Context, id int) error {
	if err := s.api.ReactivateMovie(ctx, id); err != nil {
		s.mu.Lock()
		if !errors.Is(err, api.ErrUnauthorized) {
			s.errMsg = api.Message(err, fallbackDeleteMsg)
		}
		s.mu.Unlock()
		return err
	}
	return s.refresh(ctx)
}
