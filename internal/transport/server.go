// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package transport is the frame-based harness that sits in front of
// internal/crypto: it accepts connections from the host driver, reads
// length-prefixed command frames, dispatches each to the command core, and
// writes back a (status, payload) frame. It stands in for the USB endpoint
// the real device exposes, grounded on the teacher's RendezvousServer
// listen/graceful-shutdown pattern (cmd/rendezvous.go).
package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/secube/crypto-core/internal/crypto"
	"github.com/secube/crypto-core/internal/wire"
)

// Command identifies which crypto handler a frame dispatches to (spec
// §4.4's four commands).
type Command uint16

const (
	CmdInit Command = iota
	CmdUpdate
	CmdSetTime
	CmdList
)

// Server is the transport harness. Each accepted connection is served by
// its own goroutine, but frames from all connections reach the dispatcher
// strictly one at a time — the dispatcher it wraps assumes that
// serialization.
type Server struct {
	Addr     string
	UseTLS   bool
	CertPath string
	KeyPath  string

	Dispatcher *crypto.Dispatcher
	dispatchMu sync.Mutex

	// RateLimitPerSec and RateLimitBurst bound how fast a single
	// connection may issue commands; zero RateLimitPerSec means
	// unlimited.
	RateLimitPerSec float64
	RateLimitBurst  int
}

func (s *Server) limiterArgs() (rate.Limit, int) {
	limit := rate.Inf
	if s.RateLimitPerSec > 0 {
		limit = rate.Limit(s.RateLimitPerSec)
	}
	burst := s.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	return limit, burst
}

// Start listens on Addr and serves connections until the process receives
// SIGINT/SIGTERM, then stops accepting and gives in-flight connections five
// seconds to finish their current frame before returning.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}

	if s.UseTLS {
		cert, err := tls.LoadX509KeyPair(s.CertPath, s.KeyPath)
		if err != nil {
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		lis = tls.NewListener(lis, &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		})
	}
	defer func() { _ = lis.Close() }()
	slog.Info("Listening", "addr", lis.Addr().String())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	shuttingDown := make(chan struct{})

	go func() {
		<-stop
		slog.Debug("Shutting down transport server...")
		close(shuttingDown)
		_ = lis.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-shuttingDown:
				return waitWithTimeout(&wg, 5*time.Second)
			default:
				return err
			}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.serveConn(conn)
		}()
	}
}

func waitWithTimeout(wg *sync.WaitGroup, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		slog.Debug("Transport server forced to shutdown with connections still in flight")
		return nil
	}
}

func (s *Server) serveConn(conn net.Conn) {
	defer func() { _ = conn.Close() }()

	limit, burst := s.limiterArgs()
	limiter := rate.NewLimiter(limit, burst)

	for {
		cmd, payload, err := readFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("transport: frame read failed", "err", err)
			}
			return
		}

		if err := limiter.Wait(context.Background()); err != nil {
			return
		}

		s.dispatchMu.Lock()
		respPayload, status := s.dispatch(cmd, payload)
		s.dispatchMu.Unlock()
		if err := writeFrame(conn, status, respPayload); err != nil {
			slog.Debug("transport: frame write failed", "err", err)
			return
		}
	}
}

func (s *Server) dispatch(cmd Command, payload []byte) ([]byte, wire.Status) {
	switch cmd {
	case CmdInit:
		return s.Dispatcher.Init(payload)
	case CmdUpdate:
		return s.Dispatcher.Update(payload)
	case CmdSetTime:
		status := s.Dispatcher.SetTime(payload)
		return nil, status
	case CmdList:
		return s.Dispatcher.List(payload)
	default:
		return nil, wire.ErrParams
	}
}
