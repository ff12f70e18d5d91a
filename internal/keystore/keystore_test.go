package keystore

import (
	"errors"
	"testing"

	"github.com/secube/crypto-core/internal/flash"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := Entry{
		ID:       42,
		Material: []byte{1, 2, 3, 4, 5},
		Validity: 0xDEADBEEF,
		Name:     "test-key",
	}

	buf, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got := decode(want.ID, buf[:])

	if got.Validity != want.Validity {
		t.Errorf("Validity = %d, want %d", got.Validity, want.Validity)
	}
	if string(got.Name) != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if len(got.Material) != len(want.Material) {
		t.Fatalf("Material len = %d, want %d", len(got.Material), len(want.Material))
	}
	for i := range want.Material {
		if got.Material[i] != want.Material[i] {
			t.Fatalf("Material[%d] = %d, want %d", i, got.Material[i], want.Material[i])
		}
	}
}

func TestEncodeRejectsOversizedMaterial(t *testing.T) {
	_, err := Encode(Entry{Material: make([]byte, KeyDataMax+1)})
	if err == nil {
		t.Fatal("Encode should reject material longer than KeyDataMax")
	}
}

func TestFindNotFound(t *testing.T) {
	store, err := flash.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ks := NewStore(store)
	if _, err := ks.Find(7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
