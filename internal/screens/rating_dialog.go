package screens

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"boscov/client/internal/api"
	"boscov/client/internal/domain/fields"
	"boscov/client/internal/domain/models"
	"boscov/client/internal/events"
	"boscov/client/internal/forms"

	govalidator "github.com/go-playground/validator/v10"
)

type RatingPhase int

const (
	// PhaseLoading: the existing-rating query has not completed yet.
	PhaseLoading RatingPhase = iota
	// PhaseViewing: a stored rating is shown read-only.
	PhaseViewing
	// PhaseEditing: the score/comment inputs are live.
	PhaseEditing
)

// RatingDialog is the per-movie rating modal. Opening it queries whether the
// current user already rated this movie; submit then chooses create vs
// update from that answer, so a resubmission never attempts a spurious
// create. Successful saves publish the new aggregate for lists to patch.
type RatingDialog struct {
	log *slog.Logger
	api *api.Client
	bus *events.Bus

	movie models.Movie
	user  models.User
	Form  *forms.Controller[forms.RatingForm]

	mu       sync.Mutex
	existing *models.Rating
	phase    RatingPhase
	deleting bool
	errMsg   string
	closed   bool
}

func NewRatingDialog(
	log *slog.Logger,
	client *api.Client,
	bus *events.Bus,
	validate *govalidator.Validate,
	movie models.Movie,
	user models.User,
) *RatingDialog {
	return &RatingDialog{
		log:   log,
		api:   client,
		bus:   bus,
		movie: movie,
		user:  user,
		Form:  forms.NewController(validate, forms.RatingForm{}, false),
		phase: PhaseLoading,
	}
}

// Open performs the existence check. A failed query is treated as "no prior
// rating": the dialog opens for editing and the server's composite key still
// protects against duplicates.
func (d *RatingDialog) Open(ctx context.Context) error {
	const op = "screens.RatingDialog.Open"
	log := d.log.With("op", op, "movie_id", d.movie.ID, "user_id", d.user.ID)
	ratings, err := d.api.RatingsByUser(ctx, d.user.ID)
	if err != nil {
		log.Warn("existing-rating query failed, opening as create", "error", err.Error())
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		ratings = nil
	}
	var found *models.Rating
	for i := range ratings {
		if ratings[i].MovieID == d.movie.ID {
			found = &ratings[i]
			break
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	if found != nil {
		cp := *found
		d.existing = &cp
		d.phase = PhaseViewing
		d.Form.Reset(forms.RatingFormFrom(found), true)
		return nil
	}
	d.existing = nil
	d.phase = PhaseEditing
	d.Form.Reset(forms.RatingForm{}, false)
	return nil
}

func (d *RatingDialog) Phase() RatingPhase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

func (d *RatingDialog) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

// Existing returns a copy of the stored rating shown in Viewing, nil when
// the user has none.
func (d *RatingDialog) Existing() *models.Rating {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.existing == nil {
		return nil
	}
	cp := *d.existing
	return &cp
}

// Edit switches from the read-only view to the live inputs.
func (d *RatingDialog) Edit() {
	d.mu.Lock()
	if d.phase == PhaseViewing {
		d.phase = PhaseEditing
	}
	d.mu.Unlock()
}

func (d *RatingDialog) SetScore(s fields.Score) {
	d.Form.Update(func(v *forms.RatingForm) { v.Score = s })
}

func (d *RatingDialog) SetComment(comment string) {
	d.Form.Update(func(v *forms.RatingForm) { v.Comment = comment })
}

func (d *RatingDialog) Submit(ctx context.Context) error {
	return d.Form.Submit(ctx, func(ctx context.Context, v forms.RatingForm) error {
		var (
			saved *api.SavedRating
			err   error
		)
		if d.Existing() != nil {
			saved, err = d.api.UpdateRating(ctx, d.user.ID, d.movie.ID, v.Score, v.Comment)
		} else {
			saved, err = d.api.CreateRating(ctx, api.RatingInput{
				UserID:  d.user.ID,
				MovieID: d.movie.ID,
				Score:   v.Score,
				Comment: v.Comment,
			})
		}
		if err != nil {
			return err
		}
		d.mu.Lock()
		if d.closed {
			// Completed after the dialog was torn down: drop the result.
			d.mu.Unlock()
			return nil
		}
		d.existing = &models.Rating{
			UserID:  d.user.ID,
			MovieID: d.movie.ID,
			Score:   v.Score,
			Comment: v.Comment,
		}
		d.phase = PhaseViewing
		d.errMsg = ""
		d.mu.Unlock()
		d.bus.Publish(events.Mutation{
			Entity: events.EntityMovie,
			ID:     d.movie.ID,
			Fields: map[string]any{"mediaAvaliacoes": saved.Mean()},
		})
		return nil
	})
}

// Delete removes the stored rating. It is only available once a rating
// exists and never while a save is in flight. A failure leaves the dialog
// open and does not touch any list's shadow state.
func (d *RatingDialog) Delete(ctx context.Context) error {
	const op = "screens.RatingDialog.Delete"
	d.mu.Lock()
	if d.existing == nil || d.phase == PhaseLoading {
		d.mu.Unlock()
		return api.ErrNotFound
	}
	if d.deleting || d.Form.State() == forms.StateSaving {
		d.mu.Unlock()
		return forms.ErrSaveInFlight
	}
	d.deleting = true
	d.mu.Unlock()

	mean, err := d.api.DeleteRating(ctx, d.user.ID, d.movie.ID)

	d.mu.Lock()
	d.deleting = false
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			d.errMsg = "Avaliação já foi excluída ou não existe."
		} else if !errors.Is(err, api.ErrUnauthorized) {
			d.errMsg = api.Message(err, "Ocorreu um erro ao excluir a avaliação. Tente novamente.")
		}
		d.mu.Unlock()
		d.log.With("op", op).Error("delete failed", "error", err.Error())
		return err
	}
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.existing = nil
	d.phase = PhaseEditing
	d.errMsg = ""
	d.mu.Unlock()
	d.Form.Reset(forms.RatingForm{}, false)
	d.bus.Publish(events.Mutation{
		Entity: events.EntityMovie,
		ID:     d.movie.ID,
		Fields: map[string]any{"mediaAvaliacoes": mean},
	})
	return nil
}

// Close marks the dialog torn down; late completions are dropped instead of
// mutating disposed state.
func (d *RatingDialog) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}
