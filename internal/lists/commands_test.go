package lists

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/marquee/internal/domain"
)

func TestReduce(t *testing.T) {
	favorites := domain.List{Slug: "favorites", Name: "Favorites"}
	withItem := domain.List{Slug: "favorites", Name: "Favorites", Items: []domain.ListItem{fightClub}}
	seeded := State{Seeded: true, Lists: []domain.List{favorites}}

	tests := []struct {
		name  string
		state State
		event Event
		want  State
	}{
		{
			name:  "seed empty store",
			state: State{},
			event: Seeded{Lists: []domain.List{favorites}},
			want:  seeded,
		},
		{
			name:  "seed ignored once seeded",
			state: State{Seeded: true},
			event: Seeded{Lists: []domain.List{favorites}},
			want:  State{Seeded: true},
		},
		{
			name:  "created appends",
			state: State{Seeded: true},
			event: Created{List: favorites},
			want:  seeded,
		},
		{
			name:  "created with existing slug replaces",
			state: seeded,
			event: Created{List: domain.List{Slug: "favorites", Name: "Faves"}},
			want:  State{Seeded: true, Lists: []domain.List{{Slug: "favorites", Name: "Faves"}}},
		},
		{
			name:  "renamed replaces by slug",
			state: seeded,
			event: Renamed{List: domain.List{Slug: "favorites", Name: "Best"}},
			want:  State{Seeded: true, Lists: []domain.List{{Slug: "favorites", Name: "Best"}}},
		},
		{
			name:  "membership uses server items",
			state: seeded,
			event: MembershipChanged{List: withItem},
			want:  State{Seeded: true, Lists: []domain.List{withItem}},
		},
		{
			name:  "membership for unknown slug is ignored",
			state: seeded,
			event: MembershipChanged{List: domain.List{Slug: "ghost"}},
			want:  seeded,
		},
		{
			name:  "removed drops list",
			state: seeded,
			event: Removed{Slug: "favorites"},
			want:  State{Seeded: true, Lists: []domain.List{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.state, tt.event))
		})
	}
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	state := State{Seeded: true, Lists: []domain.List{{Slug: "favorites", Name: "Favorites"}}}

	_ = Reduce(state, MembershipChanged{List: domain.List{Slug: "favorites", Name: "Favorites", Items: []domain.ListItem{fightClub}}})
	_ = Reduce(state, Renamed{List: domain.List{Slug: "favorites", Name: "Other"}})

	assert.Equal(t, "Favorites", state.Lists[0].Name)
	assert.Empty(t, state.Lists[0].Items)
}
