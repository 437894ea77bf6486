package screens

import (
	"context"
	"log/slog"

	"boscov/client/internal/api"
	"boscov/client/internal/forms"
	"boscov/client/internal/session"

	govalidator "github.com/go-playground/validator/v10"
)

// Profile is the self-edit dialog: name, nickname, email, and birth date
// only. A successful save also refreshes the session's stored user record.
type Profile struct {
	log      *slog.Logger
	api      *api.Client
	sessions *session.Manager
	Form     *forms.Controller[forms.ProfileForm]
}

func NewProfile(log *slog.Logger, client *api.Client, sessions *session.Manager, validate *govalidator.Validate) *Profile {
	p := &Profile{
		log:      log,
		api:      client,
		sessions: sessions,
	}
	if user := sessions.User(); user != nil {
		p.Form = forms.NewController(validate, forms.ProfileFormFrom(user), true)
	} else {
		p.Form = forms.NewController(validate, forms.ProfileForm{}, false)
	}
	return p
}

// Reopen re-seeds from the current session user, discarding any transient
// edit state.
func (p *Profile) Reopen() {
	if user := p.sessions.User(); user != nil {
		p.Form.Reset(forms.ProfileFormFrom(user), true)
	}
}

func (p *Profile) Update(mutate func(*forms.ProfileForm)) {
	p.Form.Update(mutate)
}

func (p *Profile) Submit(ctx context.Context) error {
	const op = "screens.Profile.Submit"
	user := p.sessions.User()
	if user == nil {
		return ErrNotSignedIn
	}
	return p.Form.Submit(ctx, func(ctx context.Context, v forms.ProfileForm) error {
		birth, err := parseFormDate(v.BirthDate)
		if err != nil {
			return err
		}
		updated, err := p.api.UpdateUser(ctx, user.ID, api.UserInput{
			Name:      v.Name,
			Nickname:  v.Nickname,
			Email:     v.Email,
			BirthDate: birth,
		})
		if err != nil {
			return err
		}
		if err := p.sessions.SetUser(*updated); err != nil {
			p.log.With("op", op).Warn("session user not persisted", "error", err.Error())
		}
		return nil
	})
}
