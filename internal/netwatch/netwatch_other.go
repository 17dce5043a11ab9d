//go:build !linux

package netwatch

import "github.com/MKhiriev/go-offline-sync/internal/logger"

func newPlatformWatcher(log *logger.Logger) Watcher {
	return newPollWatcher(defaultPollInterval, InterfacesOnline, log)
}
