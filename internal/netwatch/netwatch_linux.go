//go:build linux

package netwatch

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"golang.org/x/sys/unix"
)

// netlinkGroups are the rtnetlink multicast groups that signal link and
// address changes.
const netlinkGroups = unix.RTMGRP_LINK | unix.RTMGRP_IPV4_IFADDR | unix.RTMGRP_IPV6_IFADDR

// recvTimeout bounds each blocking read so the loop notices cancellation.
var recvTimeout = unix.Timeval{Sec: 1}

// netlinkWatcher re-evaluates the interface table whenever the kernel
// announces a link or address change.
type netlinkWatcher struct {
	check  func() bool
	logger *logger.Logger
}

func newPlatformWatcher(log *logger.Logger) Watcher {
	return &netlinkWatcher{check: InterfacesOnline, logger: log}
}

func (w *netlinkWatcher) Online() bool {
	return w.check()
}

func (w *netlinkWatcher) Watch(ctx context.Context) <-chan Event {
	fd, err := openNetlink()
	if err != nil {
		w.logger.Warn().Err(err).Msg("rtnetlink unavailable, falling back to polling")
		return newPollWatcher(defaultPollInterval, w.check, w.logger).Watch(ctx)
	}

	ch := make(chan Event, 1)
	go func() {
		defer close(ch)
		defer unix.Close(fd)

		buf := make([]byte, unix.Getpagesize())
		last := w.check()
		for {
			if ctx.Err() != nil {
				return
			}

			_, _, err := unix.Recvfrom(fd, buf, 0)
			if err != nil {
				if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
					continue
				}
				w.logger.Error().Err(err).Msg("rtnetlink read failed")
				return
			}

			now := w.check()
			if now == last {
				continue
			}
			last = now
			w.logger.Debug().Bool("online", now).Msg("interface state changed")
			select {
			case ch <- Event{Online: now, At: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func openNetlink() (int, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC, unix.NETLINK_ROUTE)
	if err != nil {
		return -1, err
	}
	if err = unix.Bind(fd, &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: netlinkGroups}); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	if err = unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &recvTimeout); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	return fd, nil
}
