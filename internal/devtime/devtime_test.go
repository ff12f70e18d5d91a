package devtime

import "testing"

func TestUninitializedFailsClosed(t *testing.T) {
	a := New()
	if !a.Expired(0) {
		t.Fatal("an uninitialized authority must report everything expired")
	}
	if _, initialized := a.Now(); initialized {
		t.Fatal("a fresh authority must not report initialized")
	}
}

func TestExpiredAfterSet(t *testing.T) {
	a := New()
	a.Set(100)

	if a.Expired(150) {
		t.Fatal("validity 150 should not be expired at devtime 100")
	}
	if !a.Expired(50) {
		t.Fatal("validity 50 should be expired at devtime 100")
	}
	if a.Expired(100) {
		t.Fatal("validity == now should not be expired")
	}
}
