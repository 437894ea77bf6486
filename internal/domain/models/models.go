package models

import (
	"boscov/client/internal/domain/fields"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleCommon Role = "common"
)

// Status values as the API ships them: records are soft-deleted by flipping
// the flag, never removed.
const (
	StatusInactive = 0
	StatusActive   = 1
)

type User struct {
	ID        int         `json:"id"`
	Name      string      `json:"nome"`
	Nickname  string      `json:"apelido,omitempty"`
	Email     string      `json:"email"`
	BirthDate fields.Date `json:"dataNascimento"`
	Role      Role        `json:"tipoUsuario"`
	Status    int         `json:"status"`
}

func (u *User) Active() bool {
	return u.Status == StatusActive
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Genre is read-only reference data.
type Genre struct {
	ID          int    `json:"id"`
	Description string `json:"descricao"`
}

// MovieGenre mirrors the nested shape of the movie-genre association in API
// responses.
type MovieGenre struct {
	Genre Genre `json:"genero"`
}

type Movie struct {
	ID             int          `json:"id"`
	Name           string       `json:"nome"`
	Director       string       `json:"diretor"`
	Year           int          `json:"anoLancamento"`
	Duration       int          `json:"duracao"` // minutes
	Producer       string       `json:"produtora"`
	Classification string       `json:"classificacao"` // "Livre" or "N+"
	Poster         string       `json:"poster"`
	Status         int          `json:"status"`
	Genres         []MovieGenre `json:"generos,omitempty"`
	MeanRating     *float64     `json:"mediaAvaliacoes,omitempty"` // server-computed, nil until first rating
}

func (m *Movie) Active() bool {
	return m.Status == StatusActive
}

func (m *Movie) GenreIDs() []int {
	ids := make([]int, 0, len(m.Genres))
	for _, g := range m.Genres {
		ids = append(ids, g.Genre.ID)
	}
	return ids
}

// Rating is composite-keyed by (UserID, MovieID): at most one per pair.
type Rating struct {
	UserID  int          `json:"idUsuario"`
	MovieID int          `json:"idFilme"`
	Score   fields.Score `json:"nota"`
	Comment string       `json:"comentario,omitempty"`
	Movie   *Movie       `json:"filme,omitempty"`
	User    *User        `json:"usuario,omitempty"`
}

// Session is the durable client-side record: the authenticated user plus a
// bearer token, treated as opaque and revocable.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
