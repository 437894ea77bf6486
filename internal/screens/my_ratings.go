package screens

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"boscov/client/internal/api"
	"boscov/client/internal/domain/filters"
	"boscov/client/internal/domain/models"
	"boscov/client/internal/events"
	"boscov/client/internal/session"
)

// MyRatings lists the signed-in user's own ratings with the rated movies,
// with edit and delete entry points.
type MyRatings struct {
	log      *slog.Logger
	api      *api.Client
	sessions *session.Manager
	bus      *events.Bus

	pipeline filters.Pipeline[models.Rating]

	mu      sync.Mutex
	ratings []models.Rating
	loading bool
	errMsg  string
	filter  filters.State
}

func NewMyRatings(log *slog.Logger, client *api.Client, sessions *session.Manager, bus *events.Bus) *MyRatings {
	return &MyRatings{
		log:      log,
		api:      client,
		sessions: sessions,
		bus:      bus,
		loading:  true,
		pipeline: filters.Pipeline[models.Rating]{
			DisplayField: ratingMovieName,
			Numeric:      func(r models.Rating) float64 { return float64(r.Score) },
		},
	}
}

func (s *MyRatings) Load(ctx context.Context) error {
	const op = "screens.MyRatings.Load"
	user := s.sessions.User()
	if user == nil {
		return ErrNotSignedIn
	}
	ratings, err := s.api.RatingsByUser(ctx, user.ID)
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

func (s *MyRatings) SetQuery(q string) {
	s.mu.Lock()
	s.filter.Query = q
	s.mu.Unlock()
}

func (s *MyRatings) SetSort(sort filters.Sort) {
	s.mu.Lock()
	s.filter.Sort = sort
	s.mu.Unlock()
}

func (s *MyRatings) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *MyRatings) Visible() ([]models.Rating, filters.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil, filters.OutcomeLoading
	}
	derived := s.pipeline.Apply(s.ratings, s.filter)
	return derived, filters.Evaluate(false, len(derived))
}

// Delete removes one of the user's ratings, patches the local list, and
// publishes the remaining aggregate for any catalog holding a shadow copy.
func (s *MyRatings) Delete(ctx context.Context, movieID int) error {
	user := s.sessions.User()
	if user == nil {
		return ErrNotSignedIn
	}
	mean, err := s.api.DeleteRating(ctx, user.ID, movieID)
	if err != nil {
		s.mu.Lock()
		if errors.Is(err, api.ErrNotFound) {
			s.errMsg = "Avaliação já foi excluída ou não existe."
		} else if !errors.Is(err, api.ErrUnauthorized) {
			s.errMsg = api.Message(err, fallbackDeleteMsg)
		}
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	kept := s.ratings[:0]
	for _, r := range s.ratings {
		if r.MovieID != movieID {
			kept = append(kept, r)
		}
	}
	s.ratings = kept
	s.errMsg = ""
	s.mu.Unlock()
	s.bus.Publish(events.Mutation{
		Entity: events.EntityMovie,
		ID:     movieID,
		Fields: map[string]any{"mediaAvaliacoes": mean},
	})
	return nil
}
