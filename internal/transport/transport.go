// Package transport wraps a single non-blocking UDP socket: receive
// frames tagged with the sending peer's address, send frames to a peer,
// and track per-peer last-seen timestamps for idle reaping. Grounded on
// the shape of the teacher's accept-loop/session read-loop pair, adapted
// from a connection-oriented TCP listener to a single connectionless
// datagram socket — there is no per-peer goroutine or channel, only a
// socket drained once per outer loop iteration.
package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
)

// maxDatagram is generous for this protocol's largest STATE packet at a
// few hundred live entities; UDP on a LAN/loopback comfortably carries it
// without fragmentation concerns this server needs to reason about.
const maxDatagram = 65507

// Frame is one inbound datagram tagged with its sender.
type Frame struct {
	Peer    *net.UDPAddr
	Payload []byte
}

// Transport owns one UDP socket. It is single-owner: callers must not
// share a Transport across goroutines, matching spec.md's single-thread
// concurrency model.
type Transport struct {
	conn     *net.UDPConn
	log      *zap.Logger
	lastSeen map[string]time.Time
	addrs    map[string]*net.UDPAddr
	readBuf  []byte
}

// Listen binds a non-blocking UDP socket to bindAddr ("host:port").
func Listen(bindAddr string, log *zap.Logger) (*Transport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("resolve bind address %q: %w", bindAddr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen udp %q: %w", bindAddr, err)
	}
	return &Transport{
		conn:     conn,
		log:      log,
		lastSeen: make(map[string]time.Time),
		addrs:    make(map[string]*net.UDPAddr),
		readBuf:  make([]byte, maxDatagram),
	}, nil
}

// Addr returns the bound local address.
func (t *Transport) Addr() net.Addr { return t.conn.LocalAddr() }

// Close releases the underlying socket.
func (t *Transport) Close() error { return t.conn.Close() }

// Poll drains every datagram currently queued on the socket without
// blocking, recording each sender's last-seen time, and returns them in
// arrival order. It stops as soon as a read would block.
func (t *Transport) Poll() []Frame {
	var frames []Frame
	for {
		if err := t.conn.SetReadDeadline(time.Now()); err != nil {
			t.log.Warn("transport: set read deadline failed", zap.Error(err))
			return frames
		}
		n, addr, err := t.conn.ReadFromUDP(t.readBuf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return frames
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return frames
			}
			t.log.Warn("transport: read failed", zap.Error(err))
			return frames
		}
		payload := make([]byte, n)
		copy(payload, t.readBuf[:n])
		key := addr.String()
		t.lastSeen[key] = time.Now()
		t.addrs[key] = addr
		frames = append(frames, Frame{Peer: addr, Payload: payload})
	}
}

// Send is best-effort: a would-block error is swallowed as acceptable
// packet loss on an idempotent snapshot protocol; any other error is
// logged and reported as SendFailed via the bool return.
func (t *Transport) Send(peer *net.UDPAddr, payload []byte) (sent bool) {
	_, err := t.conn.WriteToUDP(payload, peer)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return false
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return false
		}
		t.log.Warn("transport: send failed", zap.Error(err), zap.String("peer", peer.String()))
		return false
	}
	return true
}

// ActivePeers returns every peer seen within idleThreshold of now.
func (t *Transport) ActivePeers(idleThreshold time.Duration) []*net.UDPAddr {
	now := time.Now()
	var active []*net.UDPAddr
	for key, seen := range t.lastSeen {
		if now.Sub(seen) < idleThreshold {
			active = append(active, t.addrs[key])
		}
	}
	return active
}

// StalePeers returns peers last seen at or beyond idleThreshold, and
// removes them from Transport's own bookkeeping — the caller (Session
// Manager) is responsible for tearing down any higher-level state.
func (t *Transport) StalePeers(idleThreshold time.Duration) []*net.UDPAddr {
	now := time.Now()
	var stale []*net.UDPAddr
	for key, seen := range t.lastSeen {
		if now.Sub(seen) >= idleThreshold {
			stale = append(stale, t.addrs[key])
			delete(t.lastSeen, key)
			delete(t.addrs, key)
		}
	}
	return stale
}
