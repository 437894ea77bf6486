// Package apitest runs an in-process stand-in for the Boscov REST API so
// gateway and screen tests can exercise real HTTP round trips.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"boscov/client/internal/domain/fields"
	"boscov/client/internal/domain/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const Token = "test-token"

// Record captures one observed request for assertions.
type Record struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
}

type Server struct {
	httpServer *httptest.Server

	mu      sync.Mutex
	records []Record
	nextID  int

	Users   []models.User
	Movies  []models.Movie
	Genres  []models.Genre
	Ratings []models.Rating

	// Status forced on every authenticated route when non-zero; used to
	// provoke 401s and server errors.
	ForcedStatus int
	ForcedError  string
}

func NewServer() *Server {
	mean := 7.0
	s := &Server{
		nextID: 100,
		Users: []models.User{
			{ID: 1, Name: "Alice Admin", Email: "alice@boscov.dev", Role: models.RoleAdmin, Status: models.StatusActive, BirthDate: fields.NewDate(1990, 1, 15)},
			{ID: 7, Name: "Carlos Comum", Email: "carlos@boscov.dev", Role: models.RoleCommon, Status: models.StatusActive, BirthDate: fields.NewDate(1995, 6, 30)},
		},
		Genres: []models.Genre{
			{ID: 1, Description: "Ação"},
			{ID: 2, Description: "Comédia"},
			{ID: 3, Description: "Drama"},
			{ID: 4, Description: "Ficção Científica"},
		},
		Movies: []models.Movie{
			{
				ID: 42, Name: "O Pagador de Promessas", Director: "Anselmo Duarte",
				Year: 1962, Duration: 98, Producer: "Cinedistri", Classification: "Livre",
				Poster: "https://posters.example/pagador.jpg", Status: models.StatusActive,
				Genres: []models.MovieGenre{{Genre: models.Genre{ID: 3, Description: "Drama"}}},
			},
			{
				ID: 43, Name: "Cidade de Deus", Director: "Fernando Meirelles",
				Year: 2002, Duration: 130, Producer: "O2 Filmes", Classification: "18+",
				Poster: "https://posters.example/cidade.jpg", Status: models.StatusActive,
				Genres:     []models.MovieGenre{{Genre: models.Genre{ID: 1, Description: "Ação"}}, {Genre: models.Genre{ID: 3, Description: "Drama"}}},
				MeanRating: &mean,
			},
			{
				ID: 44, Name: "Auto da Compadecida", Director: "Guel Arraes",
				Year: 2000, Duration: 104, Producer: "Globo Filmes", Classification: "12+",
				Poster: "https://posters.example/auto.jpg", Status: models.StatusInactive,
				Genres: []models.MovieGenre{{Genre: models.Genre{ID: 2, Description: "Comédia"}}},
			},
		},
		Ratings: []models.Rating{
			{UserID: 1, MovieID: 43, Score: 7, Comment: "muito bom"},
		},
	}
	s.httpServer = httptest.NewServer(s.routes())
	return s
}

func (s *Server) URL() string { return s.httpServer.URL }
func (s *Server) Close()      { s.httpServer.Close() }

// Records returns a copy of everything observed so far.
func (s *Server) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// RequestCount counts observed requests for the given method and path.
func (s *Server) RequestCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.records {
		if rec.Method == method && rec.Path == path {
			n++
		}
	}
	return n
}

// RatingFor returns the stored rating for the pair, nil when absent.
func (s *Server) RatingFor(userID, movieID int) *models.Rating {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Ratings {
		if s.Ratings[i].UserID == userID && s.Ratings[i].MovieID == movieID {
			cp := s.Ratings[i]
			return &cp
		}
	}
	return nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Post("/login", s.login)
	r.Post("/usuario", s.createUser)
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/filmes", s.listMovies)
		r.Post("/filme", s.createMovie)
		r.Put("/filme/{id}", s.updateMovie)
		r.Delete("/filme/{id}", s.deleteMovie)
		r.Patch("/filme/{id}/reativar", s.reactivateMovie)
		r.Get("/generos", s.listGenres)
		r.Get("/usuarios", s.listUsers)
		r.Put("/usuario/{id}", s.updateUser)
		r.Delete("/usuario/{id}", s.deleteUser)
		r.Patch("/usuario/{id}/reativar", s.reactivateUser)
		r.Get("/avaliacoes", s.listRatings)
		r.Get("/avaliacoes/usuario/{id}", s.ratingsByUser)
		r.Get("/avaliacoes/filme/{id}", s.ratingsByMovie)
		r.Post("/avaliacao", s.createRating)
		r.Put("/avaliacao/{userID}/{movieID}", s.updateRating)
		r.Delete("/avaliacao/{userID}/{movieID}", s.deleteRating)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.records = append(s.records, Record{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		forced, msg := s.ForcedStatus, s.ForcedError
		s.mu.Unlock()
		if forced != 0 {
			render.Status(r, forced)
			render.JSON(w, r, map[string]string{"error": msg})
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+Token {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "token inválido"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"senha"`
	}
	if err := render.DecodeJSON(r.Body, &creds); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "corpo inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Email == creds.Email && creds.Password == "senha123" && u.Active() {
			render.JSON(w, r, map[string]any{"token": Token, "user": u})
			return
		}
	}
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"error": "credenciais inválidas"})
}

func (s *Server) listMovies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	render.JSON(w, r, s.Movies)
}

func (s *Server) listGenres(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	render.JSON(w, r, s.Genres)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	render.JSON(w, r, s.Users)
}

type movieInput struct {
	Name           string `json:"nome"`
	Director       string `json:"diretor"`
	Year           int    `json:"anoLancamento"`
	Duration       int    `json:"duracao"`
	Producer       string `json:"produtora"`
	Classification string `json:"classificacao"`
	Poster         string `json:"poster"`
	GenreIDs       []int  `json:"generoIds"`
}

func (s *Server) movieGenres(ids []int) []models.MovieGenre {
	out := make([]models.MovieGenre, 0, len(ids))
	for _, id := range ids {
		for _, g := range s.Genres {
			if g.ID == id {
				out = append(out, models.MovieGenre{Genre: g})
			}
		}
	}
	return out
}

func (s *Server) createMovie(w http.ResponseWriter, r *http.Request) {
	var in movieInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "corpo inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.Movies {
		if m.Name == in.Name && m.Year == in.Year {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, map[string]string{"error": "filme já cadastrado"})
			return
		}
	}
	s.nextID++
	movie := models.Movie{
		ID: s.nextID, Name: in.Name, Director: in.Director, Year: in.Year,
		Duration: in.Duration, Producer: in.Producer, Classification: in.Classification,
		Poster: in.Poster, Status: models.StatusActive, Genres: s.movieGenres(in.GenreIDs),
	}
	s.Movies = append(s.Movies, movie)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, movie)
}

func (s *Server) findMovie(id int) *models.Movie {
	for i := range s.Movies {
		if s.Movies[i].ID == id {
			return &s.Movies[i]
		}
	}
	return nil
}

func (s *Server) updateMovie(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var in movieInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "corpo inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	movie := s.findMovie(id)
	if movie == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "filme não encontrado"})
		return
	}
	movie.Name, movie.Director, movie.Year = in.Name, in.Director, in.Year
	movie.Duration, movie.Producer = in.Duration, in.Producer
	movie.Classification, movie.Poster = in.Classification, in.Poster
	movie.Genres = s.movieGenres(in.GenreIDs)
	render.JSON(w, r, movie)
}

func (s *Server) deleteMovie(w http.ResponseWriter, r *http.Request) {
	s.setMovieStatus(w, r, models.StatusInactive)
}

func (s *Server) reactivateMovie(w http.ResponseWriter, r *http.Request) {
	s.setMovieStatus(w, r, models.StatusActive)
}

func (s *Server) setMovieStatus(w http.ResponseWriter, r *http.Request, status int) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	movie := s.findMovie(id)
	if movie == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "filme não encontrado"})
		return
	}
	movie.Status = status
	render.JSON(w, r, movie)
}

type userInput struct {
	Name      string      `json:"nome"`
	Nickname  string      `json:"apelido"`
	Email     string      `json:"email"`
	Password  string      `json:"senha"`
	BirthDate fields.Date `json:"dataNascimento"`
	Role      models.Role `json:"tipoUsuario"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in userInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "corpo inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.Users {
		if u.Email == in.Email {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, map[string]string{"error": "e-mail já cadastrado"})
			return
		}
	}
	role := in.Role
	if role == "" {
		role = models.RoleCommon
	}
	s.nextID++
	user := models.User{
		ID: s.nextID, Name: in.Name, Nickname: in.Nickname, Email: in.Email,
		BirthDate: in.BirthDate, Role: role, Status: models.StatusActive,
	}
	s.Users = append(s.Users, user)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, user)
}

func (s *Server) findUser(id int) *models.User {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return &s.Users[i]
		}
	}
	return nil
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var in userInput
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "corpo inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.findUser(id)
	if user == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "usuário não encontrado"})
		return
	}
	user.Name, user.Nickname, user.Email = in.Name, in.Nickname, in.Email
	user.BirthDate = in.BirthDate
	if in.Role != "" {
		user.Role = in.Role
	}
	render.JSON(w, r, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.setUserStatus(w, r, models.StatusInactive)
}

func (s *Server) reactivateUser(w http.ResponseWriter, r *http.Request) {
	s.setUserStatus(w, r, models.StatusActive)
}

func (s *Server) setUserStatus(w http.ResponseWriter, r *http.Request, status int) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.findUser(id)
	if user == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "usuário não encontrado"})
		return
	}
	user.Status = status
	render.JSON(w, r, user)
}

// mean recomputes a movie's aggregate in place and returns it, nil when the
// movie has no ratings left.
func (s *Server) mean(movieID int) *float64 {
	var sum, n float64
	for _, rt := range s.Ratings {
		if rt.MovieID == movieID {
			sum += float64(rt.Score)
			n++
		}
	}
	movie := s.findMovie(movieID)
	if n == 0 {
		if movie != nil {
			movie.MeanRating = nil
		}
		return nil
	}
	m := sum / n
	if movie != nil {
		movie.MeanRating = &m
	}
	return &m
}

func (s *Server) enrich(rt models.Rating) models.Rating {
	if movie := s.findMovie(rt.MovieID); movie != nil {
		cp := *movie
		rt.Movie = &cp
	}
	if user := s.findUser(rt.UserID); user != nil {
		cp := *user
		rt.User = &cp
	}
	return rt
}

func (s *Server) listRatings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Rating, 0, len(s.Ratings))
	for _, rt := range s.Ratings {
		out = append(out, s.enrich(rt))
	}
	render.JSON(w, r, out)
}

func (s *Server) ratingsByUser(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Rating, 0)
	for _, rt := range s.Ratings {
		if rt.UserID == id {
			out = append(out, s.enrich(rt))
		}
	}
	render.JSON(w, r, out)
}

func (s *Server) ratingsByMovie(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Rating, 0)
	for _, rt := range s.Ratings {
		if rt.MovieID == id {
			out = append(out, s.enrich(rt))
		}
	}
	render.JSON(w, r, out)
}

func (s *Server) createRating(w http.ResponseWriter, r *http.Request) {
	var in models.Rating
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "corpo inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.Ratings {
		if rt.UserID == in.UserID && rt.MovieID == in.MovieID {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, map[string]string{"error": "avaliação já existe para este usuário e filme"})
			return
		}
	}
	s.Ratings = append(s.Ratings, models.Rating{
		UserID: in.UserID, MovieID: in.MovieID, Score: in.Score, Comment: in.Comment,
	})
	s.mean(in.MovieID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, s.enrich(models.Rating{UserID: in.UserID, MovieID: in.MovieID, Score: in.Score, Comment: in.Comment}))
}

func (s *Server) updateRating(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.Atoi(chi.URLParam(r, "userID"))
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieID"))
	var in models.Rating
	if err := render.DecodeJSON(r.Body, &in); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "corpo inválido"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Ratings {
		if s.Ratings[i].UserID == userID && s.Ratings[i].MovieID == movieID {
			s.Ratings[i].Score = in.Score
			s.Ratings[i].Comment = in.Comment
			s.mean(movieID)
			render.JSON(w, r, s.enrich(s.Ratings[i]))
			return
		}
	}
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]string{"error": "avaliação não encontrada"})
}

func (s *Server) deleteRating(w http.ResponseWriter, r *http.Request) {
	userID, _ := strconv.Atoi(chi.URLParam(r, "userID"))
	movieID, _ := strconv.Atoi(chi.URLParam(r, "movieID"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Ratings {
		if s.Ratings[i].UserID == userID && s.Ratings[i].MovieID == movieID {
			s.Ratings = append(s.Ratings[:i], s.Ratings[i+1:]...)
			render.JSON(w, r, map[string]any{"mediaAvaliacoes": s.mean(movieID)})
			return
		}
	}
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]string{"error": "avaliação não encontrada"})
}
