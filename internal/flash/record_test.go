package flash

import (
	"bytes"
	"errors"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordSetGetRoundTrip(t *testing.T) {
	rs := NewRecordStore(openTestStore(t))

	var want [RecordSize]byte
	copy(want[:], "hello record")

	if err := rs.Set(3, want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got [RecordSize]byte
	if err := rs.Get(3, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got[:], want[:]) {
		t.Fatal("round trip did not preserve payload")
	}
}

func TestRecordSetReplacesOnlyNewVisible(t *testing.T) {
	rs := NewRecordStore(openTestStore(t))

	var first [RecordSize]byte
	copy(first[:], "first")
	if err := rs.Set(1, first); err != nil {
		t.Fatalf("Set(first): %v", err)
	}

	var second [RecordSize]byte
	copy(second[:], "second")
	if err := rs.Set(1, second); err != nil {
		t.Fatalf("Set(second): %v", err)
	}

	var got [RecordSize]byte
	if err := rs.Get(1, &got); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got[:], second[:]) {
		t.Fatal("old record is still visible after replace")
	}
}

func TestRecordGetNotFound(t *testing.T) {
	rs := NewRecordStore(openTestStore(t))

	var got [RecordSize]byte
	err := rs.Get(9, &got)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordRejectsOutOfRangeType(t *testing.T) {
	rs := NewRecordStore(openTestStore(t))

	var data [RecordSize]byte
	if err := rs.Set(RecordMax, data); err == nil {
		t.Fatal("Set with out-of-range type should fail")
	}
}
