package session

import "testing"

func TestArenaAllocateExhaustion(t *testing.T) {
	a := New()
	var sids []uint32
	for i := 0; i < Max; i++ {
		sid, ok := a.Allocate(0, nil, 1)
		if !ok {
			t.Fatalf("allocation %d failed unexpectedly", i)
		}
		sids = append(sids, sid)
	}

	if _, ok := a.Allocate(0, nil, 1); ok {
		t.Fatal("allocation past Max should fail")
	}

	a.Free(sids[0])
	sid, ok := a.Allocate(0, nil, 1)
	if !ok {
		t.Fatal("allocation after Free should succeed")
	}
	if sid != sids[0] {
		t.Fatalf("got sid %d, want reused sid %d", sid, sids[0])
	}
}

func TestArenaBytePoolExhaustion(t *testing.T) {
	a := New()
	if _, ok := a.Allocate(0, nil, BytePool+1); ok {
		t.Fatal("allocation exceeding BytePool should fail")
	}
	if _, ok := a.Allocate(0, nil, BytePool); !ok {
		t.Fatal("allocation exactly at BytePool should succeed")
	}
	if _, ok := a.Allocate(0, nil, 1); ok {
		t.Fatal("pool should be fully committed")
	}
}

func TestArenaContextAndAlgoLookup(t *testing.T) {
	a := New()
	sid, ok := a.Allocate(7, nil, 4)
	if !ok {
		t.Fatal("allocate failed")
	}
	algo, ok := a.Algo(sid)
	if !ok || algo != 7 {
		t.Fatalf("Algo(sid) = (%d, %v), want (7, true)", algo, ok)
	}

	if _, ok := a.Context(Max); ok {
		t.Fatal("out-of-range sid must report not-found")
	}
	a.Free(sid)
	if _, ok := a.Algo(sid); ok {
		t.Fatal("freed sid must report not-found")
	}
}

func TestArenaFreeIsIdempotent(t *testing.T) {
	a := New()
	sid, _ := a.Allocate(0, nil, 10)
	a.Free(sid)
	a.Free(sid) // must not double-decrement poolUsed
	if _, ok := a.Allocate(0, nil, BytePool); !ok {
		t.Fatal("pool accounting corrupted by double free")
	}
}

func TestNewSizedHonorsExplicitCapacity(t *testing.T) {
	a := NewSized(2, 8)
	if a.Cap() != 2 {
		t.Fatalf("Cap() = %d, want 2", a.Cap())
	}
	if _, ok := a.Allocate(0, nil, 4); !ok {
		t.Fatal("first allocation should succeed")
	}
	if _, ok := a.Allocate(0, nil, 4); !ok {
		t.Fatal("second allocation should succeed")
	}
	if _, ok := a.Allocate(0, nil, 0); ok {
		t.Fatal("allocation past the configured session capacity should fail")
	}
}

func TestNewSizedDefaultsZeroToBuiltins(t *testing.T) {
	a := NewSized(0, 0)
	if a.Cap() != Max {
		t.Fatalf("Cap() = %d, want default Max=%d", a.Cap(), Max)
	}
}
