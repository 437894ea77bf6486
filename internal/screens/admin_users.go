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

type AdminUsersFilter struct {
	Query  string
	Status filters.StatusFilter
	Role   models.Role
	Sort   filters.Sort
}

// AdminUsers is the user management list with soft-delete, reactivation, and
// the admin user editor (all fields plus role; password optional on edit).
type AdminUsers struct {
	log      *slog.Logger
	api      *api.Client
	sessions *session.Manager

	pipeline filters.Pipeline[models.User]
	Form     *forms.Controller[forms.UserForm]

	mu            sync.Mutex
	users         []models.User
	loading       bool
	errMsg        string
	filter        AdminUsersFilter
	editing       *models.User
	pendingDelete *int
}

func NewAdminUsers(log *slog.Logger, client *api.Client, sessions *session.Manager, validate *govalidator.Validate) *AdminUsers {
	return &AdminUsers{
		log:      log,
		api:      client,
		sessions: sessions,
		loading:  true,
		pipeline: filters.Pipeline[models.User]{
			DisplayField: func(u models.User) string { return u.Name },
		},
		Form: forms.NewController(validate, forms.UserForm{}, false),
	}
}

func (s *AdminUsers) Load(ctx context.Context) error {
	const op = "screens.AdminUsers.Load"
	if u := s.sessions.User(); u == nil || !u.IsAdmin() {
		return ErrForbidden
	}
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		s.log.With("op", op).Error("loading users failed", "error", err.Error())
		s.mu.Lock()
		s.loading = false
		s.errMsg = loadErrMsg(err, fallbackLoadMsg)
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.users = users
	s.loading = false
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

func (s *AdminUsers) refresh(ctx context.Context) error {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		s.mu.Lock()
		s.errMsg = loadErrMsg(err, fallbackLoadMsg)
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.users = users
	s.errMsg = ""
	s.mu.Unlock()
	return nil
}

func (s *AdminUsers) SetQuery(q string) {
	s.mu.Lock()
	s.filter.Query = q
	s.mu.Unlock()
}

func (s *AdminUsers) SetStatus(f filters.StatusFilter) {
	s.mu.Lock()
	s.filter.Status = f
	s.mu.Unlock()
}

func (s *AdminUsers) SetRole(role models.Role) {
	s.mu.Lock()
	s.filter.Role = role
	s.mu.Unlock()
}

func (s *AdminUsers) SetSort(sort filters.Sort) {
	s.mu.Lock()
	s.filter.Sort = sort
	s.mu.Unlock()
}

func (s *AdminUsers) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

func (s *AdminUsers) Visible() ([]models.User, filters.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil, filters.OutcomeLoading
	}
	derived := s.pipeline.Apply(s.users,
		filters.State{Query: s.filter.Query, Sort: s.filter.Sort},
		filters.ByStatus(s.filter.Status, func(u models.User) bool { return u.Active() }),
		filters.ByRole(s.filter.Role),
	)
	return derived, filters.Evaluate(false, len(derived))
}

func (s *AdminUsers) OpenEditor(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.editing = nil
		s.Form.Reset(forms.UserForm{Role: models.RoleCommon}, false)
		return
	}
	cp := *u
	s.editing = &cp
	s.Form.Reset(forms.UserFormFrom(u), true)
}

func (s *AdminUsers) editingUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

func (s *AdminUsers) Save(ctx context.Context) error {
	err := s.Form.Submit(ctx, func(ctx context.Context, v forms.UserForm) error {
		birth, err := parseFormDate(v.BirthDate)
		if err != nil {
			return err
		}
		in := api.UserInput{
			Name:      v.Name,
			Nickname:  v.Nickname,
			Email:     v.Email,
			Password:  v.Password, // empty means no change on update
			BirthDate: birth,
			Role:      v.Role,
		}
		if editing := s.editingUser(); editing != nil {
			_, err := s.api.UpdateUser(ctx, editing.ID, in)
			return err
		}
		_, err = s.api.CreateUser(ctx, in)
		return err
	})
	if err != nil {
		return err
	}
	return s.refresh(ctx)
}

func (s *AdminUsers) AskDelete(id int) {
	s.mu.Lock()
	s.pendingDelete = &id
	s.mu.Unlock()
}

func (s *AdminUsers) CancelDelete() {
	s.mu.Lock()
	s.pendingDelete = nil
	s.mu.Unlock()
}

func (s *AdminUsers) ConfirmDelete(ctx context.Context) error {
	s.mu.Lock()
	pending := s.pendingDelete
	s.pendingDelete = nil
	s.mu.Unlock()
	if pending == nil {
		return nil
	}
	if err := s.api.DeleteUser(ctx, *pending); err != nil {
		s.mu.Lock()
		if errors.Is(err, api.ErrNotFound) {
			s.errMsg = "Usuário não encontrado."
		} else if !errors.Is(err, api.ErrUnauthorized) {
			s.errMsg = api.Message(err, fallbackDeleteMsg)
		}
		s.mu.Unlock()
		return err
	}
	return s.refresh(ctx)
}

func (s *AdminUsers) Reactivate(ctx context.Context, id int) error {
	if err := s.api.ReactivateUser(ctx, id); err != nil {
		s.mu.Lock()
		if !errors.Is(err, api.ErrUnauthorized) {
			s.errMsg = api.Message(err, fallbackDeleteMsg)
		}
		s.mu.Unlock()
		return err
	}
	return s.refresh(ctx)
}
