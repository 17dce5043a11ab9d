// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package netwatch reports the operating system's view of network
// availability. It only tells whether some usable interface exists; the
// connectivity monitor confirms real reachability with active probes.
package netwatch

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// Event is an OS-level online/offline transition.
type Event struct {
	Online bool
	At     time.Time
}

// Watcher is a source of OS network state.
type Watcher interface {
	// Online returns the current OS view.
	Online() bool

	// Watch emits an event on every transition until ctx is done, then
	// closes the channel.
	Watch(ctx context.Context) <-chan Event
}

// New returns the best watcher for the current platform: an rtnetlink
// subscription on Linux, interface polling elsewhere.
func New(log *logger.Logger) Watcher {
	if log == nil {
		log = logger.Nop()
	}
	return newPlatformWatcher(log.Component("netwatch"))
}

// InterfacesOnline reports whether at least one non-loopback interface is up
// and carries a unicast address.
func InterfacesOnline() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			var ip net.IP
			switch v := a.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip != nil && ip.IsGlobalUnicast() {
				return true
			}
		}
	}
	return false
}

// Static is a Watcher whose state is set by hand. It is used in tests and in
// headless setups where no OS signal is available.
type Static struct {
	mu     sync.Mutex
	online bool
	subs   map[chan Event]struct{}
}

// NewStatic returns a Static watcher with the given initial state.
func NewStatic(online bool) *Static {
	return &Static{online: online, subs: make(map[chan Event]struct{})}
}

func (s *Static) Online() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

func (s *Static) Watch(ctx context.Context) <-chan Event {
	ch := make(chan Event, 8)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		close(ch)
		s.mu.Unlock()
	}()
	return ch
}

// Set changes the state and notifies watchers when it differs from the
// previous one.
func (s *Static) Set(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.online == online {
		return
	}
	s.online = online
	ev := Event{Online: online, At: time.Now()}
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
