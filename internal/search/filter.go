package search

import (
	"sort"
	"strings"
	"unicode"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/marquee/internal/domain"
)

// FilterResult is a list matching a local filter query
type FilterResult struct {
	List           domain.List
	MatchedIndexes []int // Rune positions in List.Name that matched, for highlighting
	Score          int
}

// listIndex implements fuzzy.Source over list names. Names are lowered rune
// by rune so a rune position in a lowered name is the same in the original.
type listIndex struct {
	lists      []domain.List
	lowerNames []string
}

func (idx *listIndex) String(i int) string { return idx.lowerNames[i] }
func (idx *listIndex) Len() int            { return len(idx.lists) }

// FilterLists narrows lists by a fuzzy match on their names. An empty query
// returns every list in its original order.
func FilterLists(query string, lists []domain.List) []FilterResult {
	query = strings.TrimSpace(query)
	if query == "" {
		results := make([]FilterResult, len(lists))
		for i, l := range lists {
			results[i] = FilterResult{List: l}
		}
		return results
	}

	idx := &listIndex{lists: lists, lowerNames: make([]string, len(lists))}
	for i, l := range lists {
		idx.lowerNames[i] = strings.Map(unicode.ToLower, l.Name)
	}

	matches := fuzzy.FindFrom(strings.Map(unicode.ToLower, query), idx)
	results := make([]FilterResult, len(matches))
	for i, m := range matches {
		results[i] = FilterResult{
			List:           lists[m.Index],
			MatchedIndexes: runePositions(idx.lowerNames[m.Index], m.MatchedIndexes),
			Score:          m.Score,
		}
	}
	return results
}

// runePositions converts byte offsets into s, as fuzzy reports them, to
// rune positions
func runePositions(s string, offsets []int) []int {
	if len(offsets) == 0 {
		return nil
	}
	at := make(map[int]int, len(s))
	n := 0
	for i := range s {
		at[i] = n
		n++
	}
	out := make([]int, 0, len(offsets))
	for _, off := range offsets {
		if p, ok := at[off]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Suggest returns recent queries resembling the typed prefix, closest first.
// Exact repeats of the input are left out.
func Suggest(input string, history []string, limit int) []string {
	input = strings.TrimSpace(input)
	if input == "" || len(history) == 0 {
		return nil
	}

	matches := lfuzzy.RankFindFold(input, history)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.EqualFold(m.Target, input) {
			continue
		}
		out = append(out, m.Target)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
