package dashboard

import (
	"testing"

	"github.com/nao1215/trackerscope/internal/model"
)

// stateWithNetworks builds a view state with the given number of minor
// and major tracker networks on an HTTPS page.
func stateWithNetworks(minor, major int) *ViewState {
	state := &ViewState{
		URL:      "https://example.com/",
		Trackers: make(map[string]*TrackerView),
	}
	for i := 0; i < minor; i++ {
		name := "minor-" + string(rune('a'+i))
		state.Trackers[name] = &TrackerView{DisplayName: name, Prevalence: 0.01, Count: 1}
	}
	for i := 0; i < major; i++ {
		name := "major-" + string(rune('a'+i))
		state.Trackers[name] = &TrackerView{DisplayName: name, Prevalence: 0.5, Count: 1}
	}
	return state
}

// TestGradeFor tests grade boundaries and penalties.
func TestGradeFor(t *testing.T) {
	t.Parallel()

	t.Run("clean HTTPS page grades A", func(t *testing.T) {
		t.Parallel()

		if got := GradeFor(stateWithNetworks(0, 0)); got != GradeA {
			t.Errorf("got %s, expected A", got)
		}
	})

	t.Run("empty state grades A", func(t *testing.T) {
		t.Parallel()

		if got := NewViewState(nil).Grade; got != GradeA {
			t.Errorf("got %s, expected A", got)
		}
	})

	t.Run("a few minor networks grade B", func(t *testing.T) {
		t.Parallel()

		if got := GradeFor(stateWithNetworks(2, 0)); got != GradeB {
			t.Errorf("got %s, expected B", got)
		}
	})

	t.Run("major networks weigh double", func(t *testing.T) {
		t.Parallel()

		// Two major networks score 4, past the B boundary of 3.
		if got := GradeFor(stateWithNetworks(0, 2)); got != GradeC {
			t.Errorf("got %s, expected C", got)
		}
	})

	t.Run("heavy tracking grades D", func(t *testing.T) {
		t.Parallel()

		if got := GradeFor(stateWithNetworks(4, 3)); got != GradeD {
			t.Errorf("got %s, expected D", got)
		}
	})

	t.Run("plain HTTP without upgrade is penalized", func(t *testing.T) {
		t.Parallel()

		state := stateWithNetworks(1, 0)
		state.URL = "http://example.com/"

		// One minor network plus the insecure penalty crosses into C.
		if got := GradeFor(state); got != GradeC {
			t.Errorf("got %s, expected C", got)
		}
	})

	t.Run("HTTPS upgrade cancels the insecure penalty", func(t *testing.T) {
		t.Parallel()

		state := stateWithNetworks(1, 0)
		state.URL = "http://example.com/"
		state.HTTPSUpgraded = true

		if got := GradeFor(state); got != GradeB {
			t.Errorf("got %s, expected B", got)
		}
	})

	t.Run("major parent entity is penalized", func(t *testing.T) {
		t.Parallel()

		state := stateWithNetworks(0, 0)
		state.ParentEntity = &model.Entity{
			Name: "Acme Inc", DisplayName: "Acme", Prevalence: 0.8,
		}

		if got := GradeFor(state); got != GradeB {
			t.Errorf("got %s, expected B", got)
		}
	})

	t.Run("minor parent entity is not penalized", func(t *testing.T) {
		t.Parallel()

		state := stateWithNetworks(0, 0)
		state.ParentEntity = &model.Entity{
			Name: "Tiny", DisplayName: "Tiny", Prevalence: 0.01,
		}

		if got := GradeFor(state); got != GradeA {
			t.Errorf("got %s, expected A", got)
		}
	})
}
