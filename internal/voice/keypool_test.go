package voice

import "testing"

func TestKeyPoolRoundRobin(t *testing.T) {
	p := NewKeyPool([]string{"a", "b", "c"})
	want := []string{"a", "b", "c", "a", "b"}
	for i, w := range want {
		got, ok := p.Next()
		if !ok {
			t.Fatalf("Next() #%d not ok", i)
		}
		if got != w {
			t.Fatalf("Next() #%d = %q, want %q", i, got, w)
		}
	}
}

func TestKeyPoolEmpty(t *testing.T) {
	p := NewKeyPool(nil)
	if p.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", p.Size())
	}
	if _, ok := p.Next(); ok {
		t.Fatalf("Next() on empty pool should not be ok")
	}
}

func TestKeyPoolDropsBlankKeys(t *testing.T) {
	p := NewKeyPool([]string{" k1 ", "", "  ", "k2"})
	if p.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", p.Size())
	}
	got, _ := p.Next()
	if got != "k1" {
		t.Fatalf("Next() = %q, want %q", got, "k1")
	}
}
