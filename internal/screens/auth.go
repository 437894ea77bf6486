package screens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"boscov/client/internal/api"
	"boscov/client/internal/domain/fields"
	"boscov/client/internal/forms"
	"boscov/client/internal/session"

	govalidator "github.com/go-playground/validator/v10"
)

// Login drives the sign-in form; a successful submit stores the identity in
// the session manager.
type Login struct {
	log      *slog.Logger
	api      *api.Client
	sessions *session.Manager
	Form     *forms.Controller[forms.LoginForm]
}

func NewLogin(log *slog.Logger, client *api.Client, sessions *session.Manager, validate *govalidator.Validate) *Login {
	return &Login{
		log:      log,
		api:      client,
		sessions: sessions,
		Form:     forms.NewController(validate, forms.LoginForm{}, false),
	}
}

func (l *Login) SetEmail(email string) {
	l.Form.Update(func(v *forms.LoginForm) { v.Email = email })
}

func (l *Login) SetPassword(password string) {
	l.Form.Update(func(v *forms.LoginForm) { v.Password = password })
}

func (l *Login) Submit(ctx context.Context) error {
	const op = "screens.Login.Submit"
	return l.Form.Submit(ctx, func(ctx context.Context, v forms.LoginForm) error {
		result, err := l.api.Login(ctx, v.Email, v.Password)
		if err != nil {
			if errors.Is(err, api.ErrUnauthorized) {
				// Wrong credentials, not an expired session.
				return &api.APIError{Status: http.StatusUnauthorized, Message: "E-mail ou senha inválidos."}
			}
			return err
		}
		if err := l.sessions.Login(result.User, result.Token); err != nil {
			l.log.With("op", op).Warn("session not persisted", "error", err.Error())
		}
		return nil
	})
}

// Register drives the public sign-up form.
type Register struct {
	log  *slog.Logger
	api  *api.Client
	Form *forms.Controller[forms.RegisterForm]
}

func NewRegister(log *slog.Logger, client *api.Client, validate *govalidator.Validate) *Register {
	return &Register{
		log:  log,
		api:  client,
		Form: forms.NewController(validate, forms.RegisterForm{}, false),
	}
}

func (r *Register) Update(mutate func(*forms.RegisterForm)) {
	r.Form.Update(mutate)
}

func (r *Register) Submit(ctx context.Context) error {
	return r.Form.Submit(ctx, func(ctx context.Context, v forms.RegisterForm) error {
		birth, err := parseFormDate(v.BirthDate)
		if err != nil {
			return err
		}
		_, err = r.api.Register(ctx, api.UserInput{
			Name:      v.Name,
			Nickname:  v.Nickname,
			Email:     v.Email,
			Password:  v.Password,
			BirthDate: birth,
		})
		return err
	})
}

func parseFormDate(s string) (fields.Date, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return fields.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return fields.Date{Time: t}, nil
}
