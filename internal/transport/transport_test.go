package transport

import (
	"net"
	"testing"
	"time"

	"github.com/secube/crypto-core/internal/crypto"
	"github.com/secube/crypto-core/internal/devtime"
	"github.com/secube/crypto-core/internal/flash"
	"github.com/secube/crypto-core/internal/keystore"
	"github.com/secube/crypto-core/internal/session"
	"github.com/secube/crypto-core/internal/wire"
)

func TestServeConnDispatchesListOverAPipe(t *testing.T) {
	store, err := flash.Open(":memory:")
	if err != nil {
		t.Fatalf("flash.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	dispatcher := crypto.New(session.New(), keystore.NewStore(store), devtime.New())
	srv := &Server{Dispatcher: dispatcher}

	clientConn, serverConn := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.serveConn(serverConn)
	}()

	if err := WriteRequest(clientConn, CmdList, nil); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}
	status, payload, err := ReadResponse(clientConn)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if status != wire.OK {
		t.Fatalf("status = %v, want OK", status)
	}
	if count := wire.U16(payload, 0); count != 5 {
		t.Fatalf("count = %d, want 5", count)
	}

	_ = clientConn.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("serveConn did not exit after client closed the connection")
	}
}

func TestServeConnRejectsUnknownCommand(t *testing.T) {
	store, err := flash.Open(":memory:")
	if err != nil {
		t.Fatalf("flash.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	dispatcher := crypto.New(session.New(), keystore.NewStore(store), devtime.New())
	srv := &Server{Dispatcher: dispatcher}

	clientConn, serverConn := net.Pipe()
	go srv.serveConn(serverConn)
	defer func() { _ = clientConn.Close() }()

	if err := WriteRequest(clientConn, Command(99), nil); err != nil {
		t.Fatalf("WriteRequest: %v", err)
	}
	status, _, err := ReadResponse(clientConn)
	if err != nil {
		t.Fatalf("ReadResponse: %v", err)
	}
	if status != wire.ErrParams {
		t.Fatalf("status = %v, want ErrParams", status)
	}
}
