// Package forms holds the validation schemas for every create/edit dialog
// and the generic edit-state controller driving them.
package forms

import (
	"sort"

	"boscov/client/internal/domain/fields"
	"boscov/client/internal/domain/models"
)

// Values is a form's field snapshot. Equal drives dirtiness tracking and must
// compare set-valued fields order-independently.
type Values[T any] interface {
	Equal(other T) bool
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email" errorMsg:"Informe um e-mail válido."`
	Password string `json:"senha" validate:"required" errorMsg:"Informe a senha."`
}

func (f LoginForm) Equal(other LoginForm) bool { return f == other }

type RegisterForm struct {
	Name            string `json:"nome" validate:"required,max=255" errorMsg:"O campo 'nome' é obrigatório e deve ter no máximo 255 caracteres."`
	Email           string `json:"email" validate:"required,email" errorMsg:"O campo 'email' deve conter um endereço de e-mail válido."`
	Password        string `json:"senha" validate:"required,min=6" errorMsg:"A senha deve ter pelo menos 6 caracteres."`
	ConfirmPassword string `json:"confirmSenha" validate:"required,eqfield=Password" errorMsg:"As senhas não coincidem."`
	Nickname        string `json:"apelido" validate:"omitempty,max=100" errorMsg:"O campo 'apelido' deve ter no máximo 100 caracteres."`
	BirthDate       string `json:"dataNascimento" validate:"required,notfuture" errorMsg:"O campo 'data de nascimento' deve ser uma data válida e não pode ser no futuro."`
}

func (f RegisterForm) Equal(other RegisterForm) bool { return f == other }

// UserForm is the admin user editor; Password is optional and empty means
// "no change" on edit.
type UserForm struct {
	Name      string      `json:"nome" validate:"required,max=255"`
	Nickname  string      `json:"apelido" validate:"omitempty,max=100"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"senha" validate:"omitempty,min=6" errorMsg:"A senha deve ter pelo menos 6 caracteres."`
	BirthDate string      `json:"dataNascimento" validate:"required,notfuture"`
	Role      models.Role `json:"tipoUsuario" validate:"required,oneof=admin common"`
}

func (f UserForm) Equal(other UserForm) bool { return f == other }

func UserFormFrom(u *models.User) UserForm {
	return UserForm{
		Name:      u.Name,
		Nickname:  u.Nickname,
		Email:     u.Email,
		BirthDate: u.BirthDate.String(),
		Role:      u.Role,
	}
}

// ProfileForm is the self-edit subset: no role, no password.
type ProfileForm struct {
	Name      string `json:"nome" validate:"required,max=255"`
	Nickname  string `json:"apelido" validate:"omitempty,max=100"`
	Email     string `json:"email" validate:"required,email"`
	BirthDate string `json:"dataNascimento" validate:"required,notfuture"`
}

func (f ProfileForm) Equal(other ProfileForm) bool { return f == other }

func ProfileFormFrom(u *models.User) ProfileForm {
	return ProfileForm{
		Name:      u.Name,
		Nickname:  u.Nickname,
		Email:     u.Email,
		BirthDate: u.BirthDate.String(),
	}
}

type MovieForm struct {
	Name           string `json:"nome" validate:"required,max=255"`
	Director       string `json:"diretor" validate:"required,max=255"`
	Year           int    `json:"anoLancamento" validate:"required,releaseyear"`
	Duration       int    `json:"duracao" validate:"required,min=1" errorMsg:"A duração deve ser de pelo menos 1 minuto."`
	Producer       string `json:"produtora" validate:"required,max=255"`
	Classification string `json:"classificacao" validate:"required,contentrating"`
	Poster         string `json:"poster" validate:"required,url" errorMsg:"O poster deve ser uma URL válida."`
	GenreIDs       []int  `json:"generoIds" validate:"required,min=1" errorMsg:"Selecione pelo menos um gênero."`
}

// Equal compares genre selections as sets: a reordered selection with the
// same members is not a change.
func (f MovieForm) Equal(other MovieForm) bool {
	return f.Name == other.Name &&
		f.Director == other.Director &&
		f.Year == other.Year &&
		f.Duration == other.Duration &&
		f.Producer == other.Producer &&
		f.Classification == other.Classification &&
		f.Poster == other.Poster &&
		intSetEqual(f.GenreIDs, other.GenreIDs)
}

func MovieFormFrom(m *models.Movie) MovieForm {
	return MovieForm{
		Name:           m.Name,
		Director:       m.Director,
		Year:           m.Year,
		Duration:       m.Duration,
		Producer:       m.Producer,
		Classification: m.Classification,
		Poster:         m.Poster,
		GenreIDs:       m.GenreIDs(),
	}
}

type RatingForm struct {
	Score   fields.Score `json:"nota" validate:"min=0,max=10"`
	Comment string       `json:"comentario" validate:"max=500" errorMsg:"O comentário deve ter no máximo 500 caracteres."`
}

func (f RatingForm) Equal(other RatingForm) bool { return f == other }

func RatingFormFrom(r *models.Rating) RatingForm {
	return RatingForm{Score: r.Score, Comment: r.Comment}
}

func intSetEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
