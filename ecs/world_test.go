package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/redroom/ecs/component"
)

func TestSparseWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
			}
		})
	}
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func float64Ptr(f float64) *float64 {
	return &f
}

func TestSparseWorldComponentsAndQueries(t *testing.T) {
	t.Run("component_table", func(t *testing.T) {
		w := NewWorld()

		h1 := component.NewComponent[int]()
		h2 := component.NewComponent[string]()
		h3 := component.NewComponent[float64]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)

		tests := []struct {
			name     string
			setup    func() error
			check    func(t *testing.T)
			teardown func() bool
		}{
			{
				name:  "add_int_to_e1",
				setup: func() error { return Add(w, e1, h1.Kind(), intPtr(10)) },
				check: func(t *testing.T) {
					v, ok := Get[int](w, e1, h1.Kind())
					if !ok || *v != 10 {
						t.Fatalf("expected 10, got %v ok=%v", v, ok)
					}
				},
				teardown: func() bool { return Remove[int](w, e1, h1.Kind()) },
			},
			{
				name: "add_str_to_e1_and_e2",
				setup: func() error {
					if err := Add(w, e1, h2.Kind(), stringPtr("a")); err != nil {
						return err
					}
					return Add(w, e2, h2.Kind(), stringPtr("b"))
				},
				check: func(t *testing.T) {
					if !Has[string](w, e1, h2.Kind()) || !Has[string](w, e2, h2.Kind()) {
						t.Fatalf("expected both entities to have string component")
					}
				},
				teardown: func() bool { return Remove[string](w, e1, h2.Kind()) },
			},
			{
				name:  "add_float_and_remove",
				setup: func() error { return Add(w, e1, h3.Kind(), float64Ptr(1.23)) },
				check: func(t *testing.T) {
					if _, ok := Get[float64](w, e1, h3.Kind()); !ok {
						t.Fatalf("expected float present")
					}
				},
				teardown: func() bool { return Remove[float64](w, e1, h3.Kind()) },
			},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				if err := tc.setup(); err != nil {
					t.Fatalf("setup failed: %v", err)
				}
				tc.check(t)
				if !tc.teardown() {
					t.Fatalf("teardown failed for %s", tc.name)
				}
			})
		}
	})
}

func TestForEach(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		w := NewWorld()
		h := component.NewComponent[int]()

		e1 := CreateEntity(w)
		e2 := CreateEntity(w)
		e3 := CreateEntity(w)

		if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
			t.Fatalf("add failed: %v", err)
		}

		var ents []Entity
		ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })
		set := toSet(ents)

		if _, ok := set[e1]; !ok {
			t.Fatalf("expected e1 in ForEach result")
		}
		if _, ok := set[e3]; !ok {
			t.Fatalf("expected e3 in ForEach result")
		}
		if _, ok := set[e2]; ok {
			t.Fatalf("did not expect e2 in ForEach result")
		}
	})
}

// TestForEachIntersections checks ForEach3 and ForEach4 against entity
// layouts given as bitmasks over four component kinds.
func TestForEachIntersections(t *testing.T) {
	const a, b, c, d = 1, 2, 4, 8
	tests := []struct {
		name    string
		layout  []int
		destroy []int
		want3   []int
		want4   []int
	}{
		{name: "intersection", layout: []int{a, a | b | c, b, c | d, a | b | c | d}, want3: []int{1, 4}, want4: []int{4}},
		{name: "ignores_dead_entities", layout: []int{a | b | c | d, a | b | c | d}, destroy: []int{0}, want3: []int{1}, want4: []int{1}},
		{name: "no_common", layout: []int{a, b, c, d}},
		{name: "missing_store", layout: []int{a, a | b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld()
			kinds := []component.ComponentKind[int]{
				component.NewComponentKind[int](),
				component.NewComponentKind[int](),
				component.NewComponentKind[int](),
				component.NewComponentKind[int](),
			}
			entities := make([]Entity, len(tt.layout))
			for i, mask := range tt.layout {
				entities[i] = CreateEntity(w)
				for k, kind := range kinds {
					if mask&(1<<k) == 0 {
						continue
					}
					if err := Add(w, entities[i], kind, intPtr(i*10+k)); err != nil {
						t.Fatal(err)
					}
				}
			}
			for _, i := range tt.destroy {
				if !DestroyEntity(w, entities[i]) {
					t.Fatalf("failed to destroy entity %d", i)
				}
			}
			expect := func(idx []int) []Entity {
				var out []Entity
				for _, i := range idx {
					out = append(out, entities[i])
				}
				return out
			}

			var got3 []Entity
			ForEach3(w, kinds[0], kinds[1], kinds[2], func(e Entity, x, y, z *int) {
				if *x%10 != 0 || *y%10 != 1 || *z%10 != 2 {
					t.Fatalf("entity %v got values %d %d %d", e, *x, *y, *z)
				}
				got3 = append(got3, e)
			})
			var got4 []Entity
			ForEach4(w, kinds[0], kinds[1], kinds[2], kinds[3], func(e Entity, _, _, _, _ *int) {
				got4 = append(got4, e)
			})

			if want := expect(tt.want3); !equalEntities(got3, want) {
				t.Fatalf("ForEach3: expected %v, got %v", want, got3)
			}
			if want := expect(tt.want4); !equalEntities(got4, want) {
				t.Fatalf("ForEach4: expected %v, got %v", want, got4)
			}
		})
	}
}

func equalEntities(a, b []Entity) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDestroyedIDsAreRecycledWithNewGeneration(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	old := CreateEntity(w)
	if err := Add(w, old, h.Kind(), intPtr(1)); err != nil {
		t.Fatal(err)
	}
	if !DestroyEntity(w, old) {
		t.Fatal("destroy failed")
	}
	if DestroyEntity(w, old) {
		t.Fatal("second destroy should report false")
	}

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected id %d to be recycled, got %d", old.id(), fresh.id())
	}
	if fresh == old {
		t.Fatal("recycled entity must carry a new generation")
	}
	if IsAlive(w, old) {
		t.Fatal("stale handle reported alive")
	}
	if Has(w, fresh, h.Kind()) {
		t.Fatal("recycled entity inherited a component")
	}
}

func TestAddErrors(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e := CreateEntity(w)

	cases := []struct {
		name string
		err  error
		run  func() error
	}{
		{"nil_value", component.ErrNilComponent, func() error { return Add(w, e, h.Kind(), nil) }},
		{"zero_kind", component.ErrInvalidComponentKind, func() error { return Add(w, e, component.ComponentKind[int]{}, intPtr(1)) }},
		{"dead_entity", component.ErrEntityNotAlive, func() error {
			dead := CreateEntity(w)
			DestroyEntity(w, dead)
			return Add(w, dead, h.Kind(), intPtr(1))
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.run(); !errors.Is(err, c.err) {
				t.Fatalf("expected %v, got %v", c.err, err)
			}
		})
	}
}

func TestQueryOrdersByID(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	var want []Entity
	for i := 0; i < 5; i++ {
		want = append(want, CreateEntity(w))
	}
	// insert in reverse so dense order differs from id order
	for i := len(want) - 1; i >= 0; i-- {
		if err := Add(w, want[i], h.Kind(), intPtr(i)); err != nil {
			t.Fatal(err)
		}
	}
	got := Query(w, h.Kind())
	if len(got) != len(want) {
		t.Fatalf("expected %d entities, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if first, ok := First(w, h.Kind()); !ok || first != want[0] {
		t.Fatalf("First returned %v, %v", first, ok)
	}
}
