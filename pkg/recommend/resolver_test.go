package recommend

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTranslator struct {
	calls int
	fail  bool
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	f.calls++
	if f.fail {
		return "", fmt.Errorf("translator down")
	}
	return "[" + target + "]" + text, nil
}

type fakePoster struct{}

func (fakePoster) Fetch(ctx context.Context, movieID int) string {
	return fmt.Sprintf("poster://%d", movieID)
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	movies := []Movie{
		{ID: 1, Title: "Avatar", Tags: "action adventure sci-fi"},
		{ID: 2, Title: "The Dark Knight", Tags: "action crime drama"},
		{ID: 3, Title: "Batman Begins", Tags: "action crime"},
		{ID: 4, Title: "The Dark Knight Rises", Tags: "action thriller"},
		{ID: 5, Title: "Superbad", Tags: "comedy"},
		{ID: 6, Title: "Step Brothers", Tags: "comedy"},
		{ID: 7, Title: "Interstellar", Tags: "adventure drama sci-fi"},
		{ID: 8, Title: "Gladiator", Tags: "action history"},
	}
	similarity := [][]float64{
		{1.0, 0.2, 0.1, 0.2, 0.0, 0.0, 0.8, 0.1},
		{0.2, 1.0, 0.9, 0.9, 0.1, 0.0, 0.3, 0.2},
		{0.1, 0.9, 1.0, 0.8, 0.0, 0.0, 0.2, 0.2},
		{0.2, 0.9, 0.8, 1.0, 0.0, 0.0, 0.3, 0.2},
		{0.0, 0.1, 0.0, 0.0, 1.0, 0.7, 0.0, 0.0},
		{0.0, 0.0, 0.0, 0.0, 0.7, 1.0, 0.0, 0.0},
		{0.8, 0.3, 0.2, 0.3, 0.0, 0.0, 1.0, 0.1},
		{0.1, 0.2, 0.2, 0.2, 0.0, 0.0, 0.1, 1.0},
	}
	c, err := NewCatalog(movies, similarity)
	require.NoError(t, err)
	return c
}

func newTestResolver(t *testing.T, tr *fakeTranslator) *Resolver {
	t.Helper()
	return NewResolver(testCatalog(t), tr, fakePoster{}, log.New(io.Discard, "", 0))
}

func TestResolveGenreByPersianDictionaryWithoutTranslator(t *testing.T) {
	tr := &fakeTranslator{fail: true}
	r := newTestResolver(t, tr)

	out := r.Resolve(context.Background(), "کمدی")

	direct, ok := out.(Direct)
	require.True(t, ok, "expected Direct, got %T", out)
	// Translator fails, so the English titles come through untouched;
	// crucially the dictionary hit meant no fa->en translation call,
	// only the en->fa back-translation attempts.
	assert.Equal(t, []string{"Superbad", "Step Brothers"}, direct.Titles)
	assert.Equal(t, []string{"poster://5", "poster://6"}, direct.Posters)
	assert.Equal(t, 2, tr.calls, "only back-translation of the two titles")
}

func TestResolveGenreEnglish(t *testing.T) {
	tr := &fakeTranslator{}
	r := newTestResolver(t, tr)

	out := r.Resolve(context.Background(), "comedy")

	direct, ok := out.(Direct)
	require.True(t, ok)
	assert.Equal(t, []string{"Superbad", "Step Brothers"}, direct.Titles)
	assert.Zero(t, tr.calls, "latin-script query must not touch the translator")
}

func TestResolveGenreCapsAtFiveResults(t *testing.T) {
	r := newTestResolver(t, &fakeTranslator{})

	out := r.Resolve(context.Background(), "action")

	direct, ok := out.(Direct)
	require.True(t, ok)
	assert.Len(t, direct.Titles, 5)
	assert.Len(t, direct.Posters, 5)
}

func TestResolveUniqueTitleRanksBySimilarity(t *testing.T) {
	r := newTestResolver(t, &fakeTranslator{})

	out := r.Resolve(context.Background(), "interstellar")

	direct, ok := out.(Direct)
	require.True(t, ok)
	// Avatar scores 0.8; The Dark Knight and its sequel tie at 0.3 and
	// keep catalog order; the query item itself is excluded.
	assert.Equal(t, []string{
		"Avatar", "The Dark Knight", "The Dark Knight Rises", "Batman Begins", "Gladiator",
	}, direct.Titles)
	assert.NotContains(t, direct.Titles, "Interstellar")
}

func TestResolveMultipleTitleMatchesIsAmbiguous(t *testing.T) {
	r := newTestResolver(t, &fakeTranslator{})

	out := r.Resolve(context.Background(), "the dark knight")

	// "the dark knight" is contained in two titles but matches one exactly,
	// so the exact hit wins (disambiguation closure).
	direct, ok := out.(Direct)
	require.True(t, ok)
	assert.NotContains(t, direct.Titles, "The Dark Knight")

	out = r.Resolve(context.Background(), "dark knight")
	ambiguous, ok := out.(Ambiguous)
	require.True(t, ok, "expected Ambiguous, got %T", out)
	assert.Equal(t, []string{"The Dark Knight", "The Dark Knight Rises"}, ambiguous.Options)
}

func TestResolveFuzzyFallback(t *testing.T) {
	r := newTestResolver(t, &fakeTranslator{})

	out := r.Resolve(context.Background(), "intersteller")

	ambiguous, ok := out.(Ambiguous)
	require.True(t, ok, "expected Ambiguous, got %T", out)
	assert.Contains(t, ambiguous.Options, "Interstellar")
}

func TestResolveNoMatchIsEmpty(t *testing.T) {
	r := newTestResolver(t, &fakeTranslator{})

	out := r.Resolve(context.Background(), "zzzzqqqq")
	_, ok := out.(Empty)
	assert.True(t, ok, "expected Empty, got %T", out)

	out = r.Resolve(context.Background(), "   ")
	_, ok = out.(Empty)
	assert.True(t, ok)
}

func TestResolvePersianTitlesAreBackTranslated(t *testing.T) {
	tr := &fakeTranslator{}
	r := newTestResolver(t, tr)

	out := r.Resolve(context.Background(), "کمدی")

	direct, ok := out.(Direct)
	require.True(t, ok)
	assert.Equal(t, []string{"[fa]Superbad", "[fa]Step Brothers"}, direct.Titles)
	assert.Equal(t, 2, tr.calls, "one back-translation per returned title")
}

func TestDisambiguationClosure(t *testing.T) {
	r := newTestResolver(t, &fakeTranslator{})

	out := r.Resolve(context.Background(), "dark knight")
	ambiguous, ok := out.(Ambiguous)
	require.True(t, ok)

	for _, option := range ambiguous.Options {
		resolved := r.Resolve(context.Background(), option)
		_, stillAmbiguous := resolved.(Ambiguous)
		assert.False(t, stillAmbiguous, "picking %q must not be ambiguous again", option)
	}
}

func TestSimilarityRatio(t *testing.T) {
	assert.Equal(t, 1.0, similarityRatio("avatar", "avatar"))
	assert.Equal(t, 0.0, similarityRatio("", "avatar"))
	assert.Greater(t, similarityRatio("intersteller", "interstellar"), 0.4)
	assert.Less(t, similarityRatio("zzzz", "avatar"), 0.4)
}
