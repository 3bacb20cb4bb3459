package rng

import "testing"

func TestDeterministicSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		va, vb := a.Next(), b.Next()
		if va != vb {
			t.Fatalf("divergence at call %d: %v != %v", i, va, vb)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("Next() out of [0,1) range: %v", va)
		}
	}
}

func TestDifferentSeedsDiverge(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			same = false
		}
	}
	if same {
		t.Fatalf("expected different seeds to diverge")
	}
}

func TestIntegerRange(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.Integer(5)
		if v < 0 || v >= 5 {
			t.Fatalf("Integer(5) out of range: %d", v)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	r := New(7)
	for i := 0; i < 1000; i++ {
		v := r.Range(3, 8)
		if v < 3 || v >= 8 {
			t.Fatalf("Range(3,8) out of bounds: %d", v)
		}
	}
}

func TestPickEmptyFails(t *testing.T) {
	r := New(1)
	_, err := Pick(r, []int{})
	if err == nil {
		t.Fatalf("expected error picking from empty slice")
	}
}

func TestPickDeterministic(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	a := New(99)
	b := New(99)
	va, err := Pick(a, items)
	if err != nil {
		t.Fatal(err)
	}
	vb, err := Pick(b, items)
	if err != nil {
		t.Fatal(err)
	}
	if va != vb {
		t.Fatalf("Pick diverged: %v != %v", va, vb)
	}
}

func TestShuffleDeterministic(t *testing.T) {
	a := []int{1, 2, 3, 4, 5, 6}
	b := []int{1, 2, 3, 4, 5, 6}
	Shuffle(New(123), a)
	Shuffle(New(123), b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("shuffle diverged at %d: %v != %v", i, a, b)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	a := New(5)
	a.Next()
	a.Next()
	saved := a.State()

	b := New(0)
	b.Restore(saved)

	for i := 0; i < 20; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("restored RNG diverged at call %d", i)
		}
	}
}
