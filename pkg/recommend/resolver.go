package recommend

import (
	"context"
	"log"
	"sort"
	"strings"

	"ai-chatbot-be/pkg/poster"
	"ai-chatbot-be/pkg/textnorm"
	"ai-chatbot-be/pkg/translate"
)

// genreDictionary maps Persian genre and keyword terms to their canonical
// English tag. Kept as an ordered slice so substring scans are
// deterministic: the first listed term that appears in the query wins.
var genreDictionary = []struct {
	Fa string
	En string
}{
	{"اکشن", "action"},
	{"کمدی", "comedy"},
	{"درام", "drama"},
	{"ترسناک", "horror"},
	{"علمی تخیلی", "sci-fi"},
	{"علمی", "sci-fi"},
	{"تخیلی", "sci-fi"},
	{"ماجراجویی", "adventure"},
	{"انیمیشن", "animation"},
	{"رمانتیک", "romance"},
	{"عاشقانه", "romance"},
	{"جنایی", "crime"},
	{"تاریخی", "history"},
	{"جنگی", "war"},
	{"موزیکال", "musical"},
	{"اسپورت", "sport"},
}

const (
	maxResults  = 5
	fuzzyCutoff = 0.4
	languageFa  = "fa"
	languageEn  = "en"
)

// Resolver turns a free-text title or genre query into a recommendation
// outcome. It owns no session state; every call is independent.
type Resolver struct {
	catalog    *Catalog
	translator translate.Translator
	posters    poster.Client
	logger     *log.Logger
}

// NewResolver creates a resolver over the given catalog and collaborators.
func NewResolver(catalog *Catalog, translator translate.Translator, posters poster.Client, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		catalog:    catalog,
		translator: translator,
		posters:    posters,
		logger:     logger,
	}
}

// Resolve runs the lookup ladder: genre dictionary, genre-tag containment,
// title containment, fuzzy candidates. The first rung that produces a
// result wins.
func (r *Resolver) Resolve(ctx context.Context, query string) Outcome {
	query = strings.TrimSpace(query)
	if query == "" {
		return Empty{}
	}

	wantsFa := textnorm.ContainsPersian(query)
	queryEn := strings.ToLower(r.normalizeQuery(ctx, query, wantsFa))

	// Genre tags first: a genre query should never be treated as a title.
	if out := r.matchGenre(ctx, queryEn, wantsFa); out != nil {
		return out
	}
	return r.matchTitle(ctx, queryEn, wantsFa)
}

// normalizeQuery maps a localized query to English: exact dictionary hit,
// then substring scan, then the external translator. Translation failure
// falls back to the raw query.
func (r *Resolver) normalizeQuery(ctx context.Context, query string, wantsFa bool) string {
	for _, entry := range genreDictionary {
		if query == entry.Fa {
			return entry.En
		}
	}

	lowered := strings.ToLower(query)
	for _, entry := range genreDictionary {
		if strings.Contains(lowered, entry.Fa) {
			return entry.En
		}
	}

	if !wantsFa {
		return query
	}
	translated, err := r.translator.Translate(ctx, query, languageFa, languageEn)
	if err != nil {
		r.logger.Printf("[WARN] query translation failed, using raw query: %v", err)
		return query
	}
	return translated
}

func (r *Resolver) matchGenre(ctx context.Context, queryEn string, wantsFa bool) Outcome {
	var titles, posters []string
	for _, m := range r.catalog.Movies {
		if !strings.Contains(strings.ToLower(m.Tags), queryEn) {
			continue
		}
		titles = append(titles, r.localizeTitle(ctx, m.Title, wantsFa))
		posters = append(posters, r.posters.Fetch(ctx, m.ID))
		if len(titles) == maxResults {
			break
		}
	}
	if len(titles) == 0 {
		return nil
	}
	return Direct{Titles: titles, Posters: posters}
}

func (r *Resolver) matchTitle(ctx context.Context, queryEn string, wantsFa bool) Outcome {
	var matched []int
	exact := -1
	for i := 0; i < r.catalog.Len(); i++ {
		title := r.catalog.TitleLower(i)
		if !strings.Contains(title, queryEn) {
			continue
		}
		matched = append(matched, i)
		if title == queryEn {
			exact = i
		}
	}

	switch {
	case len(matched) == 0:
		return r.fuzzyCandidates(ctx, queryEn, wantsFa)
	case len(matched) == 1:
		return r.similarTo(ctx, matched[0], wantsFa)
	case exact >= 0:
		// A disambiguation pick echoes a full title back; an exact hit
		// must resolve even when it is a substring of other titles.
		return r.similarTo(ctx, exact, wantsFa)
	default:
		options := make([]string, 0, maxResults)
		for _, idx := range matched[:min(len(matched), maxResults)] {
			options = append(options, r.localizeTitle(ctx, r.catalog.Movies[idx].Title, wantsFa))
		}
		return Ambiguous{Options: options}
	}
}

// similarTo ranks every other catalog row by its precomputed similarity to
// the matched row and returns ranks 2..6 (rank 1 is the query item itself).
func (r *Resolver) similarTo(ctx context.Context, row int, wantsFa bool) Outcome {
	scores := r.catalog.Similarity[row]
	if len(scores) != r.catalog.Len() {
		r.logger.Printf("[ERROR] similarity row %d has %d entries for %d movies", row, len(scores), r.catalog.Len())
		return Failure{Message: "اطلاعات شباهت فیلم‌ها در دسترس نیست."}
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	// Stable sort comparing score only: equal scores keep catalog order.
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	var titles, posters []string
	for _, idx := range order {
		if idx == row {
			continue
		}
		m := r.catalog.Movies[idx]
		titles = append(titles, r.localizeTitle(ctx, m.Title, wantsFa))
		posters = append(posters, r.posters.Fetch(ctx, m.ID))
		if len(titles) == maxResults {
			break
		}
	}
	return Direct{Titles: titles, Posters: posters}
}

// fuzzyCandidates looks for near-miss titles when containment found
// nothing. Anything scoring at or above the cutoff becomes a
// disambiguation option.
func (r *Resolver) fuzzyCandidates(ctx context.Context, queryEn string, wantsFa bool) Outcome {
	type scored struct {
		idx   int
		score float64
	}
	var candidates []scored
	for i := 0; i < r.catalog.Len(); i++ {
		if s := similarityRatio(queryEn, r.catalog.TitleLower(i)); s >= fuzzyCutoff {
			candidates = append(candidates, scored{idx: i, score: s})
		}
	}
	if len(candidates) == 0 {
		return Empty{}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	options := make([]string, 0, maxResults)
	for _, c := range candidates[:min(len(candidates), maxResults)] {
		options = append(options, r.localizeTitle(ctx, r.catalog.Movies[c.idx].Title, wantsFa))
	}
	return Ambiguous{Options: options}
}

// localizeTitle translates a title back to Persian for Persian-script
// queries. A failed translation keeps the English title.
func (r *Resolver) localizeTitle(ctx context.Context, title string, wantsFa bool) string {
	if !wantsFa {
		return title
	}
	translated, err := r.translator.Translate(ctx, title, languageEn, languageFa)
	if err != nil {
		r.logger.Printf("[WARN] title translation failed for %q: %v", title, err)
		return title
	}
	return translated
}

// similarityRatio is a difflib-style lexical similarity: twice the length
// of the longest common subsequence over the combined length.
func similarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
