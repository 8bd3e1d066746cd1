package registry

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xatuke/screenshader/internal/platform"
)

const (
	root    platform.WindowID = 0x100
	overlay platform.WindowID = 0x200
)

func newWith(t *testing.T, ids ...platform.WindowID) *Registry[string] {
	t.Helper()
	r := New[string](root, overlay)
	for _, id := range ids {
		if _, ok := r.Insert(id, ""); !ok {
			t.Fatalf("Insert(0x%x) rejected", id)
		}
	}
	return r
}

func mustFind(t *testing.T, r *Registry[string], id platform.WindowID) Handle {
	t.Helper()
	h, ok := r.Find(id)
	if !ok {
		t.Fatalf("Find(0x%x) missing", id)
	}
	return h
}

func TestInsert_AppendsAtTop(t *testing.T) {
	r := newWith(t, 1, 2, 3)
	if diff := cmp.Diff([]platform.WindowID{1, 2, 3}, r.IDs()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestInsert_RejectsDuplicatesAndExcluded(t *testing.T) {
	r := newWith(t, 1)
	for _, id := range []platform.WindowID{1, root, overlay, platform.None} {
		if _, ok := r.Insert(id, ""); ok {
			t.Fatalf("Insert(0x%x) accepted", id)
		}
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestRestack(t *testing.T) {
	tests := []struct {
		name  string
		move  platform.WindowID
		above platform.WindowID
		want  []platform.WindowID
	}{
		{name: "none goes to bottom", move: 3, above: platform.None, want: []platform.WindowID{3, 1, 2}},
		{name: "above tracked sibling", move: 1, above: 2, want: []platform.WindowID{2, 1, 3}},
		{name: "above top sibling", move: 1, above: 3, want: []platform.WindowID{2, 3, 1}},
		{name: "unknown sibling goes to top", move: 1, above: 0x999, want: []platform.WindowID{2, 3, 1}},
		{name: "self sibling keeps position", move: 2, above: 2, want: []platform.WindowID{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newWith(t, 1, 2, 3)
			if !r.Restack(mustFind(t, r, tt.move), tt.above) {
				t.Fatal("Restack() returned false")
			}
			if diff := cmp.Diff(tt.want, r.IDs()); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
			if err := r.Check(); err != nil {
				t.Fatalf("Check() error: %v", err)
			}
		})
	}
}

func TestCirculate(t *testing.T) {
	r := newWith(t, 1, 2, 3)
	r.RaiseToTop(mustFind(t, r, 1))
	r.LowerToBottom(mustFind(t, r, 2))
	if diff := cmp.Diff([]platform.WindowID{2, 3, 1}, r.IDs()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRemove_StaleHandleDoesNotAliasReusedSlot(t *testing.T) {
	r := newWith(t, 1, 2)
	old := mustFind(t, r, 1)
	if !r.Remove(old) {
		t.Fatal("Remove() returned false")
	}
	if r.Remove(old) {
		t.Fatal("second Remove() of the same handle succeeded")
	}

	h, ok := r.Insert(7, "seven")
	if !ok {
		t.Fatal("Insert(7) rejected")
	}
	if _, ok := r.Get(old); ok {
		t.Fatal("stale handle resolved after slot reuse")
	}
	if got := r.ID(old); got != platform.None {
		t.Fatalf("ID(stale) = 0x%x, want None", got)
	}
	if v, _ := r.Get(h); v != "seven" {
		t.Fatalf("Get() = %q, want %q", v, "seven")
	}
	if diff := cmp.Diff([]platform.WindowID{2, 7}, r.IDs()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestAll_StopsEarly(t *testing.T) {
	r := newWith(t, 1, 2, 3)
	var seen []platform.WindowID
	for h := range r.All() {
		seen = append(seen, r.ID(h))
		if len(seen) == 2 {
			break
		}
	}
	if diff := cmp.Diff([]platform.WindowID{1, 2}, seen); diff != "" {
		t.Fatalf("iteration mismatch (-want +got):\n%s", diff)
	}
}

// Random sequences of operations keep the ordering a permutation of the
// tracked set.
func TestRandomOperationsKeepOrderingConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	r := New[int](root, overlay)
	model := map[platform.WindowID]bool{}

	for i := 0; i < 5000; i++ {
		id := platform.WindowID(rng.Intn(40) + 1)
		switch rng.Intn(5) {
		case 0, 1:
			_, ok := r.Insert(id, i)
			if ok == model[id] {
				t.Fatalf("step %d: Insert(0x%x) = %v with tracked=%v", i, id, ok, model[id])
			}
			model[id] = true
		case 2:
			if h, ok := r.Find(id); ok {
				r.Remove(h)
				delete(model, id)
			}
		case 3:
			if h, ok := r.Find(id); ok {
				r.Restack(h, platform.WindowID(rng.Intn(45)))
			}
		case 4:
			if h, ok := r.Find(id); ok {
				if rng.Intn(2) == 0 {
					r.RaiseToTop(h)
				} else {
					r.LowerToBottom(h)
				}
			}
		}
		if err := r.Check(); err != nil {
			t.Fatalf("step %d: Check() error: %v", i, err)
		}
		if r.Len() != len(model) {
			t.Fatalf("step %d: Len() = %d, want %d", i, r.Len(), len(model))
		}
	}
}
