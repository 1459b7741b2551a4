package floodfill

import "testing"

func TestVisitedSet_SetAndHas(t *testing.T) {
	v := newVisitedSet(200)
	if v.has(100) {
		t.Fatal("has(100) = true before set")
	}
	v.set(100)
	if !v.has(100) {
		t.Fatal("has(100) = false after set")
	}
	if v.has(99) || v.has(101) {
		t.Fatal("set(100) affected neighboring bits")
	}
}

func TestVisitedSet_ResetReusesBuffer(t *testing.T) {
	v := newVisitedSet(128)
	v.set(5)
	v.set(64)
	v.reset([]uint32{5, 64})

	if v.has(5) || v.has(64) {
		t.Fatal("reset did not clear previously set bits")
	}

	// Reused for a second origin.
	v.set(5)
	if !v.has(5) {
		t.Fatal("has(5) = false after re-set on reused buffer")
	}
}

func TestVisitedSet_CrossWordBoundary(t *testing.T) {
	v := newVisitedSet(128)
	v.set(63)
	v.set(64)
	if !v.has(63) || !v.has(64) {
		t.Fatal("bits spanning a word boundary were not both set")
	}
}
