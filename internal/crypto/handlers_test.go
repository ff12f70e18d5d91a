package crypto

import (
	"bytes"
	"testing"

	"github.com/secube/crypto-core/internal/devtime"
	"github.com/secube/crypto-core/internal/flash"
	"github.com/secube/crypto-core/internal/keystore"
	"github.com/secube/crypto-core/internal/provision"
	"github.com/secube/crypto-core/internal/session"
	"github.com/secube/crypto-core/internal/wire"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *flash.Store) {
	t.Helper()
	store, err := flash.Open(":memory:")
	if err != nil {
		t.Fatalf("flash.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	d := New(session.New(), keystore.NewStore(store), devtime.New())
	return d, store
}

func initReq(algo, mode uint16, keyID uint32) []byte {
	req := make([]byte, initReqSize)
	wire.PutU16(req, 0, algo)
	wire.PutU16(req, 2, mode)
	wire.PutU32(req, 4, keyID)
	return req
}

func updateReq(sid uint32, flags uint16, d1, d2 []byte) []byte {
	d1Padded := wire.RoundUp16(len(d1))
	req := make([]byte, updateHeaderSize+d1Padded+len(d2))
	wire.PutU32(req, 0, sid)
	wire.PutU16(req, 4, flags)
	wire.PutU16(req, 6, uint16(len(d1)))
	wire.PutU16(req, 8, uint16(len(d2)))
	copy(req[updateHeaderSize:], d1)
	copy(req[updateHeaderSize+d1Padded:], d2)
	return req
}

func TestListReturnsFiveAlgorithms(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp, status := d.List(nil)
	if status != wire.OK {
		t.Fatalf("List: status = %v", status)
	}
	count := wire.U16(resp, 0)
	if count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}
}

func TestListRejectsNonEmptyRequest(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if _, status := d.List([]byte{0}); status != wire.ErrParams {
		t.Fatalf("status = %v, want ErrParams", status)
	}
}

func TestInitUnknownAlgorithm(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if _, status := d.Init(initReq(99, 0, keystore.KeyInvalid)); status != wire.ErrParams {
		t.Fatalf("status = %v, want ErrParams", status)
	}
}

func TestInitRejectsBadRequestSize(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if _, status := d.Init([]byte{1, 2, 3}); status != wire.ErrParams {
		t.Fatalf("status = %v, want ErrParams", status)
	}
}

func TestInitUnknownKeyID(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if _, status := d.Init(initReq(0, wire.ModeCBCEncrypt, 5)); status != wire.ErrResource {
		t.Fatalf("status = %v, want ErrResource", status)
	}
}

func TestInitExpiredKey(t *testing.T) {
	d, store := newTestDispatcher(t)
	keys := provision.NewKeys(store)
	if err := keys.Put(1, bytes.Repeat([]byte{0x01}, 32), 10, "expired"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	d.Time.Set(20)

	if _, status := d.Init(initReq(0, wire.ModeCBCEncrypt, 1)); status != wire.ErrExpired {
		t.Fatalf("status = %v, want ErrExpired", status)
	}
}

func TestInitUninitializedDeviceTimeExpiresEveryKey(t *testing.T) {
	d, store := newTestDispatcher(t)
	keys := provision.NewKeys(store)
	if err := keys.Put(1, bytes.Repeat([]byte{0x01}, 32), 0xFFFFFFFF, "never-set-clock"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, status := d.Init(initReq(0, wire.ModeCBCEncrypt, 1)); status != wire.ErrExpired {
		t.Fatalf("status = %v, want ErrExpired", status)
	}
}

func TestInitUpdateRoundTripAES(t *testing.T) {
	d, store := newTestDispatcher(t)
	keys := provision.NewKeys(store)
	key := bytes.Repeat([]byte{0x7E}, 32)
	if err := keys.Put(1, key, 0xFFFFFFFF, "aes-key"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	d.Time.Set(1)

	resp, status := d.Init(initReq(0, wire.ModeCBCEncrypt, 1))
	if status != wire.OK {
		t.Fatalf("Init: status = %v", status)
	}
	sid := wire.U32(resp, 0)

	plain := bytes.Repeat([]byte{0xAB}, 16)
	resp, status = d.Update(updateReq(sid, wire.FlagFinit, plain, nil))
	if status != wire.OK {
		t.Fatalf("Update: status = %v", status)
	}
	outLen := wire.U16(resp, 0)
	if int(outLen) != len(plain) {
		t.Fatalf("outLen = %d, want %d", outLen, len(plain))
	}

	// FINIT must have freed the session.
	if _, status := d.Update(updateReq(sid, 0, plain, nil)); status != wire.ErrResource {
		t.Fatalf("post-FINIT Update status = %v, want ErrResource", status)
	}
}

func TestUpdateUnknownSession(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if _, status := d.Update(updateReq(0, 0, nil, nil)); status != wire.ErrResource {
		t.Fatalf("status = %v, want ErrResource", status)
	}
}

func TestUpdateRejectsShortHeader(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if _, status := d.Update(make([]byte, updateHeaderSize-1)); status != wire.ErrParams {
		t.Fatalf("status = %v, want ErrParams", status)
	}
}

func TestSetTimeThenExpiry(t *testing.T) {
	d, _ := newTestDispatcher(t)
	req := make([]byte, setTimeReqSize)
	wire.PutU32(req, 0, 7)
	if status := d.SetTime(req); status != wire.OK {
		t.Fatalf("SetTime: status = %v", status)
	}
	now, initialized := d.Time.Now()
	if !initialized || now != 7 {
		t.Fatalf("Now() = (%d, %v), want (7, true)", now, initialized)
	}
	if !d.Time.Expired(6) {
		t.Fatal("validity 6 should be expired at devtime 7")
	}
	if d.Time.Expired(7) {
		t.Fatal("validity 7 should not be expired at devtime 7")
	}
}

func TestSetTimeRejectsBadSize(t *testing.T) {
	d, _ := newTestDispatcher(t)
	if status := d.SetTime([]byte{1, 2, 3}); status != wire.ErrParams {
		t.Fatalf("status = %v, want ErrParams", status)
	}
}
