package screens

import (
	"context"
	"log/slog"
	"sync"

	"boscov/client/internal/api"
	"boscov/client/internal/domain/filters"
	"boscov/client/internal/domain/models"
	"boscov/client/internal/events"
)

type CatalogFilter struct {
	Query string
	Genre string // slugified token, empty = all
	Sort  filters.Sort
}

// Catalog is the user-facing movie grid. It holds a shadow copy of each
// movie's aggregate mean rating and patches only the affected entry when a
// rating dialog publishes a mutation, without re-fetching the list.
type Catalog struct {
	log *slog.Logger
	api *api.Client

	pipeline    filters.Pipeline[models.Movie]
	unsubscribe func()

	mu      sync.Mutex
	movies  []models.Movie
	genres  []models.Genre
	loading bool
	errMsg  string
	filter  CatalogFilter
}

func NewCatalog(log *slog.Logger, client *api.Client, bus *events.Bus) *Catalog {
	c := &Catalog{
		log:     log,
		api:     client,
		loading: true,
		pipeline: filters.Pipeline[models.Movie]{
			DisplayField: func(m models.Movie) string { return m.Name },
			Numeric:      func(m models.Movie) float64 { return float64(m.Year) },
		},
	}
	c.unsubscribe = bus.Subscribe(c.applyMutation)
	return c
}

func (c *Catalog) Load(ctx context.Context) error {
	const op = "screens.Catalog.Load"
	log := c.log.With("op", op)
	movies, err := c.api.ListMovies(ctx, api.ListMoviesParams{})
	if err != nil {
		log.Error("loading movies failed", "error", err.Error())
		c.fail(err)
		return err
	}
	genres, err := c.api.ListGenres(ctx)
	if err != nil {
		log.Error("loading genres failed", "error", err.Error())
		c.fail(err)
		return err
	}
	c.mu.Lock()
	c.movies = movies
	c.genres = genres
	c.loading = false
	c.errMsg = ""
	c.mu.Unlock()
	log.Debug("catalog loaded", "movies", len(movies), "genres", len(genres))
	return nil
}

// fail keeps the previous data and surfaces a message; the user always has a
// retry path.
func (c *Catalog) fail(err error) {
	c.mu.Lock()
	c.loading = false
	c.errMsg = loadErrMsg(err, fallbackLoadMsg)
	c.mu.Unlock()
}

func (c *Catalog) SetQuery(q string) {
	c.mu.Lock()
	c.filter.Query = q
	c.mu.Unlock()
}

func (c *Catalog) SetGenre(token string) {
	c.mu.Lock()
	c.filter.Genre = token
	c.mu.Unlock()
}

func (c *Catalog) SetSort(s filters.Sort) {
	c.mu.Lock()
	c.filter.Sort = s
	c.mu.Unlock()
}

func (c *Catalog) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Catalog) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Catalog) Genres() []models.Genre {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Genre(nil), c.genres...)
}

// Visible derives the displayed subset from the raw fetch and the filter
// state. While the fetch is loading the pipeline is not invoked.
func (c *Catalog) Visible() ([]models.Movie, filters.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return nil, filters.OutcomeLoading
	}
	derived := c.pipeline.Apply(c.movies,
		filters.State{Query: c.filter.Query, Sort: c.filter.Sort},
		filters.ByStatus(filters.StatusActiveOnly, func(m models.Movie) bool { return m.Active() }),
		filters.MovieHasGenre(c.filter.Genre),
	)
	return derived, filters.Evaluate(false, len(derived))
}

func (c *Catalog) applyMutation(m events.Mutation) {
	if m.Entity != events.EntityMovie {
		return
	}
	raw, ok := m.Fields["mediaAvaliacoes"]
	if !ok {
		return
	}
	mean, ok := raw.(float64)
	if !ok {
		return
	}
	c.mu.Lock()
	for i := range c.movies {
		if c.movies[i].ID == m.ID {
			v := mean
			c.movies[i].MeanRating = &v
		}
	}
	c.mu.Unlock()
}

// Close detaches the catalog from the mutation bus so a disposed screen is
// never patched.
func (c *Catalog) Close() {
	c.unsubscribe()
}
