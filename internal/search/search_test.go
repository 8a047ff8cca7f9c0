package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/envelope"
)

func ptr[T any](v T) *T { return &v }

// fakeSearchClient fabricates deterministic pages: 20 records per page with
// ids derived from the page number, so pages never overlap.
type fakeSearchClient struct {
	calls      []string
	fail       map[string]error
	totalPages int
}

func (f *fakeSearchClient) page(op, query string, page int) (domain.ResultPage, error) {
	key := fmt.Sprintf("%s:%s:%d", op, query, page)
	f.calls = append(f.calls, key)
	if err := f.fail[key]; err != nil {
		return domain.ResultPage{}, err
	}
	total := f.totalPages
	if total == 0 {
		total = 5
	}
	results := make([]domain.Record, 20)
	for i := range results {
		id := page*100 + i
		results[i] = domain.Record{
			ID:        ptr(id),
			MediaType: "movie",
			Title:     ptr(fmt.Sprintf("%s %d", query, id)),
			Name:      ptr(fmt.Sprintf("%s %d", query, id)),
		}
	}
	return domain.ResultPage{Results: results, Page: page, TotalPages: total, TotalResults: total * 20}, nil
}

func (f *fakeSearchClient) SearchMulti(ctx context.Context, q string, p int) (domain.ResultPage, error) {
	return f.page("multi", q, p)
}

func (f *fakeSearchClient) SearchMovie(ctx context.Context, q string, p int) (domain.ResultPage, error) {
	return f.page("movie", q, p)
}

func (f *fakeSearchClient) SearchTv(ctx context.Context, q string, p int) (domain.ResultPage, error) {
	return f.page("tv", q, p)
}

func (f *fakeSearchClient) SearchPerson(ctx context.Context, q string, p int) (domain.ResultPage, error) {
	return f.page("person", q, p)
}

func (f *fakeSearchClient) Trending(ctx context.Context) (domain.ResultPage, error) {
	return f.page("trending", "", 1)
}

func TestOperationFor(t *testing.T) {
	tests := []struct {
		intent domain.SearchIntent
		want   Operation
	}{
		{domain.SearchIntent{Query: "", Tab: domain.CategoryMovie, Page: 3}, OpTrending},
		{domain.SearchIntent{Query: "   ", Tab: domain.CategoryPerson}, OpTrending},
		{domain.SearchIntent{Query: "alien", Tab: domain.CategoryAll}, OpSearchMulti},
		{domain.SearchIntent{Query: "alien", Tab: domain.CategoryMovie}, OpSearchMovie},
		{domain.SearchIntent{Query: "alien", Tab: domain.CategoryTvShow}, OpSearchTv},
		{domain.SearchIntent{Query: "alien", Tab: domain.CategoryPerson}, OpSearchPerson},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q/%s", tt.intent.Query, tt.intent.Tab), func(t *testing.T) {
			assert.Equal(t, tt.want, OperationFor(tt.intent))
		})
	}
}

func TestTrendingIgnoresTabAndPage(t *testing.T) {
	base := Fetch(context.Background(), &fakeSearchClient{}, Request{Intent: domain.SearchIntent{Tab: domain.CategoryAll, Page: 1}})
	require.NoError(t, base.Err)

	for _, tab := range domain.Categories {
		for _, page := range []int{0, 1, 2, 7} {
			client := &fakeSearchClient{}
			intent := domain.SearchIntent{Query: " ", Tab: tab, Page: page}
			res := Fetch(context.Background(), client, Request{Intent: intent})

			require.NoError(t, res.Err)
			assert.Equal(t, base.Page, res.Page)
			assert.Equal(t, []string{"trending::1"}, client.calls)
			assert.Equal(t, domain.SearchIntent{Tab: domain.CategoryAll, Page: 1}, Canonical(intent))
		}
	}
}

func TestSubmitGoesPendingSynchronously(t *testing.T) {
	o := NewOrchestrator(nil)

	req, ok := o.Submit(domain.SearchIntent{Query: "alien", Tab: domain.CategoryMovie, Page: 1})
	require.True(t, ok)
	assert.Equal(t, envelope.Pending, o.State())
	assert.True(t, req.ScrollToResults)
	assert.Nil(t, o.Items())

	_, ok = o.Submit(domain.SearchIntent{Query: " alien ", Tab: domain.CategoryMovie, Page: 1})
	assert.False(t, ok, "normalized duplicate is not a new intent")

	req, ok = o.Submit(domain.SearchIntent{Query: "alien", Tab: domain.CategoryMovie, Page: 2})
	require.True(t, ok)
	assert.False(t, req.ScrollToResults, "page change keeps scroll position")

	req, ok = o.Submit(domain.SearchIntent{Query: "alien", Tab: domain.CategoryTvShow, Page: 1})
	require.True(t, ok)
	assert.False(t, req.ScrollToResults, "tab change keeps scroll position")
}

// permutations returns every ordering of 0..n-1
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			q := append(append(append([]int{}, p[:i]...), n-1), p[i:]...)
			out = append(out, q)
		}
	}
	return out
}

func TestLastIntentWinsInAnyCompletionOrder(t *testing.T) {
	intents := []domain.SearchIntent{
		{Query: "bat", Tab: domain.CategoryAll, Page: 1},
		{Query: "batm", Tab: domain.CategoryAll, Page: 1},
		{Query: "batman", Tab: domain.CategoryMovie, Page: 1},
		{Query: "batman", Tab: domain.CategoryMovie, Page: 2},
	}
	last := intents[len(intents)-1]

	for _, failLast := range []bool{false, true} {
		for _, order := range permutations(len(intents)) {
			t.Run(fmt.Sprintf("order=%v/failLast=%v", order, failLast), func(t *testing.T) {
				client := &fakeSearchClient{fail: map[string]error{}}
				if failLast {
					client.fail["movie:batman:2"] = domain.NewAPIError(503, "unavailable")
				}
				o := NewOrchestrator(nil)

				var results []Result
				for _, in := range intents {
					req, ok := o.Submit(in)
					require.True(t, ok)
					results = append(results, Fetch(context.Background(), client, req))
				}

				applied := 0
				for _, i := range order {
					if o.Apply(results[i]) {
						applied++
						assert.Equal(t, len(intents)-1, i, "only the last intent may apply")
					}
				}
				assert.Equal(t, 1, applied)
				assert.Equal(t, last, o.Intent())

				if failLast {
					assert.Equal(t, envelope.Rejected, o.State())
					require.NotNil(t, o.Err())
					assert.Equal(t, 503, o.Err().Status)
					assert.Nil(t, o.Items())
					return
				}
				assert.Equal(t, envelope.Resolved, o.State())
				page, ok := o.Page()
				require.True(t, ok)
				assert.Equal(t, 2, page.Page)
				assert.Equal(t, 200, o.Items()[0].TmdbID)
			})
		}
	}
}

func TestBatmanPagination(t *testing.T) {
	client := &fakeSearchClient{totalPages: 5}
	o := NewOrchestrator(nil)

	req, ok := o.Submit(domain.SearchIntent{Query: "batman", Tab: domain.CategoryMovie, Page: 1})
	require.True(t, ok)
	require.True(t, o.Apply(Fetch(context.Background(), client, req)))

	require.Len(t, o.Items(), 20)
	cur, total := o.Pages()
	assert.Equal(t, 1, cur)
	assert.Equal(t, 5, total)
	for p := 2; p <= 5; p++ {
		assert.True(t, o.CanPage(p), "page %d", p)
	}
	assert.False(t, o.CanPage(6))
	assert.False(t, o.CanPage(0))

	firstPage := o.Items()

	req, ok = o.Submit(domain.SearchIntent{Query: "batman", Tab: domain.CategoryMovie, Page: 2})
	require.True(t, ok)
	assert.False(t, req.ScrollToResults)
	require.True(t, o.Apply(Fetch(context.Background(), client, req)))

	items := o.Items()
	require.Len(t, items, 20, "page 2 replaces page 1")
	for _, it := range items {
		for _, old := range firstPage {
			assert.NotEqual(t, old.TmdbID, it.TmdbID)
		}
	}
	cur, _ = o.Pages()
	assert.Equal(t, 2, cur)
}

func TestHydrateSuppressesFirstFetch(t *testing.T) {
	client := &fakeSearchClient{}
	intent := domain.SearchIntent{Query: "alien", Tab: domain.CategoryAll, Page: 1}
	page, err := client.SearchMulti(context.Background(), "alien", 1)
	require.NoError(t, err)

	o := NewOrchestrator(nil)
	require.True(t, o.Hydrate(intent, page, nil))
	assert.Equal(t, envelope.Resolved, o.State())
	assert.Len(t, o.Items(), 20)

	_, ok := o.Submit(intent)
	assert.False(t, ok, "same intent after hydration is a no-op")
	assert.False(t, o.Hydrate(intent, page, nil), "hydration happens once")

	_, ok = o.Submit(domain.SearchIntent{Query: "aliens", Tab: domain.CategoryAll, Page: 1})
	assert.True(t, ok)
}

func TestHydrateWithError(t *testing.T) {
	o := NewOrchestrator(nil)
	require.True(t, o.Hydrate(domain.SearchIntent{}, domain.ResultPage{}, errors.New("offline")))
	assert.Equal(t, envelope.Rejected, o.State())
	assert.Equal(t, "offline", o.Err().Message)

	req := o.Retry()
	assert.Equal(t, envelope.Pending, o.State())
	assert.True(t, o.Apply(Fetch(context.Background(), &fakeSearchClient{}, req)))
	assert.Equal(t, envelope.Resolved, o.State())
}

func TestControlsInertWhileTrending(t *testing.T) {
	o := NewOrchestrator(nil)
	req, ok := o.Submit(domain.SearchIntent{})
	require.True(t, ok)
	require.True(t, o.Apply(Fetch(context.Background(), &fakeSearchClient{totalPages: 50}, req)))

	assert.False(t, o.ControlsEnabled())
	assert.False(t, o.CanPage(2))
	_, total := o.Pages()
	assert.Equal(t, 1, total)
}

func TestPageCountCapped(t *testing.T) {
	o := NewOrchestrator(nil)
	req, _ := o.Submit(domain.SearchIntent{Query: "the", Tab: domain.CategoryAll})
	require.True(t, o.Apply(Fetch(context.Background(), &fakeSearchClient{totalPages: 9000}, req)))
	assert.Equal(t, MaxPages, o.PageCount())
}
