package screens

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"boscov/client/internal/api"
	"boscov/client/internal/domain/filters"
	"boscov/client/internal/domain/models"
	"boscov/client/internal/session"
)

// ratingKey is the composite identifier of a rating.
type ratingKey struct {
	UserID  int
	MovieID int
}

// AdminRatings is the rating moderation list: every stored rating with its
// movie and author, searchable by movie title, deletable by composite key.
type AdminRatings struct {
	log      *slog.Logger
	api      *api.Client
	sessions *session.Manager

	pipeline filters.Pipeline[models.Rating]

	mu            sync.Mutex
	ratings       []models.Rating
	loading       bool
	errMsg        string
	filter        filters.State
	pendingDelete *ratingKey
}

func NewAdminRatings(log *slog.Logger, client *api.Client, sessions *session.Manager) *AdminRatings {
	return &AdminRatings{
		log:      log,
		api:      client,
		sessions: sessions,
		loading:  true,
		pipeline: filters.Pipeline[models.Rating]{
			DisplayField: ratingMovieName,
			Numeric:      func(r models.Rating) float64 { return float64(r.Score) },
		},
	}
}

func ratingMovieName(r models.Rating) string {
	if r.Movie != nil {
		return r.Movie.Name
	}
	return strconv.Itoa(r.MovieID)
}

func (s *AdminRatings) Load(ctx context.Context) error {
	const op = "screens.AdminRatings.Load"
	if u := s.sessions.User(); u == nil || !u.IsAdmin() {
		return ErrForbidden
	}
	ratings, err := s.api.ListRatings(ctx)
	if err != nil {
		s.log.With("op", op).Error("loading ratings failed", "error", err.Error())
		s.mu.Lock()
		s.loading = false
		s.errMsg = loadErrMsg(err, fallbackLoadMsg)
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.ratings = ratings
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

func (s *AdminRatings) refresh(ctx context.Context) error {
	ratings, err := s.api.ListRatings(ctx)
	if err != nil {
		s.mu.Lock()
		s.errMsg = loadErrMsg(err, fallbackLoadMsg)
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.ratings = ratings
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

func (s *AdminRatings) SetQuery(q string) {
	s.mu.Lock()
	s.filter.Query = q
	s.mu.Unlock()
}

func (s *AdminRatings) SetSort(sort filters.Sort) {
	s.mu.Lock()
	s.filter.Sort = sort
	s.mu.Unlock()
}

func (s *AdminRatings) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *AdminRatings) Visible() ([]models.Rating, filters.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil, filters.OutcomeLoading
	}
	derived := s.pipeline.Apply(s.ratings, s.filter)
	return derived, filters.Evaluate(false, len(derived))
}

func (s *AdminRatings) AskDelete(userID, movieID int) {
	s.mu.Lock()
	s.pendingDelete = &ratingKey{UserID: userID, MovieID: movieID}
	s.mu.Unlock()
}

func (s *AdminRatings) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = nil
	s.mu.Unlock()
}

func (s *AdminRatings) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pendingDelete
	s.pendingDelete = nil
	s.mu.Unlock()
	if pending == nil {
		return nil
	}
	if _, err := s.api.DeleteRating(ctx, pending.UserID, pending.MovieID); err != nil {
		s.mu.Lock()
		if errors.Is(err, api.ErrNotFound) {
			s.errMsg = "Avaliação já foi excluída ou não existe."
		} else if !errors.Is(err, api.ErrUnauthorized) {
			s.errMsg = api.Message(err, fallbackDeleteMsg)
		}
		s.mu.Unlock()
		return err
	}
	return s.refresh(ctx)
}
