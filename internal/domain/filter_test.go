package domain

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestFilterHistory(t *testing.T) {
	chatOnly := NewRoleSet(RoleUser, RoleAssistant)

	tests := []struct {
		name     string
		history  []Turn
		accepted RoleSet
		want     Conversation
	}{
		{
			name: "drops leading system turn",
			history: []Turn{
				{Role: RoleSystem, Content: "ignore me"},
				{Role: RoleUser, Content: "hi"},
				{Role: RoleAssistant, Content: "hello"},
			},
			accepted: chatOnly,
			want: Conversation{
				{Role: RoleUser, Content: "hi"},
				{Role: RoleAssistant, Content: "hello"},
			},
		},
		{
			name: "drops system turns in the middle",
			history: []Turn{
				{Role: RoleUser, Content: "a"},
				{Role: RoleSystem, Content: "b"},
				{Role: RoleAssistant, Content: "c"},
				{Role: RoleSystem, Content: "d"},
				{Role: RoleUser, Content: "e"},
			},
			accepted: chatOnly,
			want: Conversation{
				{Role: RoleUser, Content: "a"},
				{Role: RoleAssistant, Content: "c"},
				{Role: RoleUser, Content: "e"},
			},
		},
		{
			name:     "empty history",
			history:  nil,
			accepted: chatOnly,
			want:     Conversation{},
		},
		{
			name: "unknown roles are dropped",
			history: []Turn{
				{Role: Role("function"), Content: "x"},
				{Role: RoleUser, Content: "y"},
			},
			accepted: NewRoleSet(RoleUser, RoleAssistant, RoleSystem),
			want:     Conversation{{Role: RoleUser, Content: "y"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterHistory(tt.history, tt.accepted)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterHistory() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFilterHistory_DoesNotMutateInput(t *testing.T) {
	history := []Turn{
		{Role: RoleSystem, Content: "s"},
		{Role: RoleUser, Content: "u"},
	}
	snapshot := append([]Turn(nil), history...)

	_ = FilterHistory(history, NewRoleSet(RoleUser))

	if !reflect.DeepEqual(history, snapshot) {
		t.Errorf("input mutated: %+v", history)
	}
}

// Output roles must be a subset of the accepted set and keep relative order.
func TestFilterHistory_SubsetAndOrder(t *testing.T) {
	roles := []Role{RoleUser, RoleAssistant, RoleSystem}
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		history := make([]Turn, rng.Intn(12))
		for i := range history {
			history[i] = Turn{Role: roles[rng.Intn(len(roles))], Content: string(rune('a' + i))}
		}
		accepted := NewRoleSet()
		for _, r := range roles {
			if rng.Intn(2) == 0 {
				accepted[r] = struct{}{}
			}
		}

		got := FilterHistory(history, accepted)

		next := 0
		for _, turn := range got {
			if !accepted.Contains(turn.Role) {
				t.Fatalf("round %d: role %q not in accepted set", round, turn.Role)
			}
			found := false
			for next < len(history) {
				if history[next] == turn {
					found = true
					next++
					break
				}
				next++
			}
			if !found {
				t.Fatalf("round %d: order not preserved for %+v", round, turn)
			}
		}
	}
}
