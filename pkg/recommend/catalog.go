package recommend

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Movie is one row of the preprocessed catalog.
type Movie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Tags  string `json:"tags"`
}

// Catalog holds the movie rows together with their precomputed pairwise
// content-similarity matrix. Similarity[i][j] scores movie i against movie
// j; the row order matches Movies.
type Catalog struct {
	Movies     []Movie     `json:"movies"`
	Similarity [][]float64 `json:"similarity"`

	titlesLower []string
}

// LoadCatalog reads the exported catalog JSON produced by the offline
// preprocessing step.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read movie catalog: %w", err)
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse movie catalog: %w", err)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return &c, nil
}

// NewCatalog builds a catalog from in-memory rows, mainly for tests.
func NewCatalog(movies []Movie, similarity [][]float64) (*Catalog, error) {
	c := &Catalog{Movies: movies, Similarity: similarity}
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) init() error {
	if len(c.Movies) == 0 {
		return fmt.Errorf("movie catalog is empty")
	}
	if len(c.Similarity) != len(c.Movies) {
		return fmt.Errorf("similarity matrix has %d rows for %d movies", len(c.Similarity), len(c.Movies))
	}
	c.titlesLower = make([]string, len(c.Movies))
	for i, m := range c.Movies {
		c.titlesLower[i] = strings.ToLower(m.Title)
	}
	return nil
}

// TitleLower returns the precomputed lowercase title at index i.
func (c *Catalog) TitleLower(i int) string {
	return c.titlesLower[i]
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int {
	return len(c.Movies)
}
