package pariter

import "testing"

func intLess(a, b int) bool { return a < b }

func TestIteratorTransitions(t *testing.T) {
	left := map[int]string{1: "a", 2: "b", 4: "d"}
	right := map[int]string{2: "B", 3: "c", 4: "d"}

	var got []string
	it := New(left, right, intLess)
	for it.State() != Done {
		switch it.State() {
		case InLeft:
			got = append(got, "L"+it.LeftValue())
		case InRight:
			got = append(got, "R"+it.RightValue())
		case InBoth:
			got = append(got, "B"+it.LeftValue()+it.RightValue())
		}
		it.Advance()
	}

	want := []string{"La", "BbB", "Rc", "Bdd"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestIteratorEmptyInputs(t *testing.T) {
	it := New(map[int]string{}, map[int]string{}, intLess)
	if it.State() != Done {
		t.Fatalf("expected Done immediately, got %v", it.State())
	}
}

func TestIteratorAllLeft(t *testing.T) {
	left := map[int]string{1: "a", 2: "b"}
	it := New(left, map[int]string{}, intLess)
	count := 0
	for it.State() != Done {
		if it.State() != InLeft {
			t.Fatalf("expected InLeft, got %v", it.State())
		}
		count++
		it.Advance()
	}
	if count != 2 {
		t.Fatalf("expected 2 entries, got %d", count)
	}
}
