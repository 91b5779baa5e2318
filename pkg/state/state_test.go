package state

import (
	"slices"
	"sync"
	"testing"
)

func TestGetUnset(t *testing.T) {
	s := New()
	v, ok := s.Get("missing")
	if ok {
		t.Fatalf("Get(missing) ok = true, want false")
	}
	if v != nil {
		t.Errorf("Get(missing) = %v, want nil", v)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := New()
	s.Set("x", 1)
	s.Set("x", "two")

	v, ok := s.Get("x")
	if !ok || v != "two" {
		t.Errorf("Get(x) = %v, %v, want two, true", v, ok)
	}
}

func TestZeroValueStore(t *testing.T) {
	var s Store
	s.Set("x", 1)
	if got := As[int](&s, "x"); got != 1 {
		t.Errorf("As[int](x) = %d, want 1", got)
	}
}

func TestPlaceholder(t *testing.T) {
	if got := Placeholder("status"); got != "$status" {
		t.Errorf("Placeholder(status) = %q, want $status", got)
	}
}

func TestUpdate(t *testing.T) {
	s := New()
	s.Update("count", func(v any) any {
		if v != nil {
			t.Errorf("Update on unset name got %v, want nil", v)
		}
		return AsInt(v) + 1
	})
	s.Update("count", func(v any) any { return AsInt(v) + 1 })

	if got := As[int](s, "count"); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestUpdateConcurrent(t *testing.T) {
	s := New()
	s.Set("n", 0)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("n", func(v any) any { return AsInt(v) + 1 })
		}()
	}
	wg.Wait()

	if got := As[int](s, "n"); got != 50 {
		t.Errorf("n = %d, want 50", got)
	}
}

func TestAsWrongType(t *testing.T) {
	s := New()
	s.Set("name", "loom")
	if got := As[int](s, "name"); got != 0 {
		t.Errorf("As[int](name) = %d, want 0", got)
	}
	if got := As[string](s, "name"); got != "loom" {
		t.Errorf("As[string](name) = %q, want loom", got)
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{nil, 0},
		{3, 3},
		{int64(4), 4},
		{uint8(5), 5},
		{float64(6.9), 6},
		{"7", 0},
	}
	for _, tt := range tests {
		if got := AsInt(tt.in); got != tt.want {
			t.Errorf("AsInt(%#v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNamesSnapshotDelete(t *testing.T) {
	s := New()
	s.Set("b", 2)
	s.Set("a", 1)
	s.Set("c", 3)
	s.Delete("c")
	s.Delete("never-set")

	if got, want := s.Names(), []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	snap := s.Snapshot()
	snap["a"] = 100
	if got := As[int](s, "a"); got != 1 {
		t.Errorf("mutating snapshot changed store: a = %d", got)
	}
}
