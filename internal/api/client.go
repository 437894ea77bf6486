// Package api is the single configured HTTP gateway to the Boscov REST API.
// All reads defeat intermediary caching and any unauthorized response clears
// the session exactly once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"boscov/client/internal/domain/fields"
	"boscov/client/internal/domain/models"

	"github.com/gorilla/schema"
)

// Sessions is the slice of the session manager the gateway needs.
type Sessions interface {
	Token() string
	Invalidate()
}

type Client struct {
	log      *slog.Logger
	baseURL  *url.URL
	http     *http.Client
	sessions Sessions
	encoder  *schema.Encoder
}

func New(log *slog.Logger, baseURL string, timeout time.Duration, sessions Sessions) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	encoder := schema.NewEncoder()
	return &Client{
		log:     log,
		baseURL: parsed,
		http: &http.Client{
			Timeout: timeout,
			Transport: &transport{
				base:   http.DefaultTransport,
				tokens: sessions,
				now:    time.Now,
			},
		},
		sessions: sessions,
		encoder:  encoder,
	}, nil
}

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/login", nil, Credentials{Email: email, Password: password}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UserInput is the create/update payload for users. An empty Password means
// "no change" on update.
type UserInput struct {
	Name      string      `json:"nome"`
	Nickname  string      `json:"apelido,omitempty"`
	Email     string      `json:"email"`
	Password  string      `json:"senha,omitempty"`
	BirthDate fields.Date `json:"dataNascimento"`
	Role      models.Role `json:"tipoUsuario,omitempty"`
}

// Register self-creates a common user; the same endpoint serves admin
// creation with a role set.
func (c *Client) Register(ctx context.Context, in UserInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/usuario", nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	return c.Register(ctx, in)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/usuarios", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, in UserInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/usuario/%d", id), nil, in, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/usuario/%d", id), nil, nil, nil)
}

func (c *Client) ReactivateUser(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/usuario/%d/reativar", id), nil, struct{}{}, nil)
}

// ListMoviesParams are the optional server-side search parameters the list
// endpoint accepts; the client-side pipeline covers the rest.
type ListMoviesParams struct {
	Search string `schema:"search,omitempty"`
	Genre  string `schema:"genero,omitempty"`
	Order  string `schema:"order,omitempty"`
}

func (c *Client) ListMovies(ctx context.Context, params ListMoviesParams) ([]models.Movie, error) {
	query := url.Values{}
	if err := c.encoder.Encode(params, query); err != nil {
		return nil, fmt.Errorf("encode movie list params: %w", err)
	}
	var movies []models.Movie
	if err := c.do(ctx, http.MethodGet, "/filmes", query, nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (c *Client) ListGenres(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	if err := c.do(ctx, http.MethodGet, "/generos", nil, nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

type MovieInput struct {
	Name           string `json:"nome"`
	Director       string `json:"diretor"`
	Year           int    `json:"anoLancamento"`
	Duration       int    `json:"duracao"`
	Producer       string `json:"produtora"`
	Classification string `json:"classificacao"`
	Poster         string `json:"poster"`
	GenreIDs       []int  `json:"generoIds"`
}

func (c *Client) CreateMovie(ctx context.Context, in MovieInput) (*models.Movie, error) {
	var movie models.Movie
	if err := c.do(ctx, http.MethodPost, "/filme", nil, in, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *Client) UpdateMovie(ctx context.Context, id int, in MovieInput) (*models.Movie, error) {
	var movie models.Movie
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/filme/%d", id), nil, in, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

func (c *Client) DeleteMovie(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/filme/%d", id), nil, nil, nil)
}

func (c *Client) ReactivateMovie(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/filme/%d/reativar", id), nil, struct{}{}, nil)
}

func (c *Client) ListRatings(ctx context.Context) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := c.do(ctx, http.MethodGet, "/avaliacoes", nil, nil, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (c *Client) RatingsByUser(ctx context.Context, userID int) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/avaliacoes/usuario/%d", userID), nil, nil, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (c *Client) RatingsByMovie(ctx context.Context, movieID int) ([]models.Rating, error) {
	var ratings []models.Rating
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/avaliacoes/filme/%d", movieID), nil, nil, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

type RatingInput struct {
	UserID  int          `json:"idUsuario"`
	MovieID int          `json:"idFilme"`
	Score   fields.Score `json:"nota"`
	Comment string       `json:"comentario,omitempty"`
}

// SavedRating is a create/update response; Movie carries the recomputed
// aggregate so lists can patch their shadow copy without re-fetching.
type SavedRating struct {
	models.Rating
}

// Mean returns the server-computed aggregate, falling back to the submitted
// score when the response did not include the movie.
func (r *SavedRating) Mean() float64 {
	if r.Movie != nil && r.Movie.MeanRating != nil {
		return *r.Movie.MeanRating
	}
	return float64(r.Score)
}

func (c *Client) CreateRating(ctx context.Context, in RatingInput) (*SavedRating, error) {
	var saved SavedRating
	if err := c.do(ctx, http.MethodPost, "/avaliacao", nil, in, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) UpdateRating(ctx context.Context, userID, movieID int, score fields.Score, comment string) (*SavedRating, error) {
	payload := struct {
		Score   fields.Score `json:"nota"`
		Comment string       `json:"comentario,omitempty"`
	}{Score: score, Comment: comment}
	var saved SavedRating
	path := fmt.Sprintf("/avaliacao/%d/%d", userID, movieID)
	if err := c.do(ctx, http.MethodPut, path, nil, payload, &saved); err != nil {
		return nil, err
	}
	if saved.Score == 0 {
		saved.Score = score
	}
	return &saved, nil
}

// DeleteRating removes the (user, movie) rating and returns the remaining
// aggregate, zero when the movie has no ratings left.
func (c *Client) DeleteRating(ctx context.Context, userID, movieID int) (float64, error) {
	var result struct {
		Mean *float64 `json:"mediaAvaliacoes"`
	}
	path := fmt.Sprintf("/avaliacao/%d/%d", userID, movieID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, &result); err != nil {
		return 0, err
	}
	if result.Mean == nil {
		return 0, nil
	}
	return *result.Mean, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	const op = "api.Client.do"
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.asError(resp, method, path)
	}
	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// errorBody covers both error shapes the API uses: a single message and a
// per-field list.
type errorBody struct {
	Error  string          `json:"error"`
	Errors json.RawMessage `json:"errors"`
}

func (c *Client) asError(resp *http.Response, method, path string) error {
	var parsed errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = json.Unmarshal(raw, &parsed)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		c.sessions.Invalidate()
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		if fieldErrs := parseFieldErrors(parsed.Errors); len(fieldErrs) > 0 {
			return &ValidationError{Fields: fieldErrs}
		}
	}
	c.log.Warn("api request failed",
		"method", method, "path", path, "status", resp.StatusCode, "message", parsed.Error)
	return &APIError{Status: resp.StatusCode, Message: parsed.Error}
}

func parseFieldErrors(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	asMap := make(map[string]string)
	if err := json.Unmarshal(raw, &asMap); err == nil {
		return asMap
	}
	var asList []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &asList); err == nil {
		out := make(map[string]string, len(asList))
		for _, e := range asList {
			out[e.Field] = e.Message
		}
		return out
	}
	return nil
}
