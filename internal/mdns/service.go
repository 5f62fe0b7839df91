// Package mdns advertises the Kanine server on the local network.
package mdns

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/hashicorp/mdns"
)

const (
	// ServiceType is the mDNS service type for Kanine servers.
	ServiceType = "_kanine._tcp"

	// APIVersion is the API version advertised in TXT records.
	APIVersion = "v1"
)

// Service manages mDNS advertisement so clients can find the server without
// manual configuration.
type Service struct {
	server  *mdns.Server
	version string
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewService creates a new mDNS service advertising the given server version.
func NewService(version string, logger *slog.Logger) *Service {
	return &Service{
		version: version,
		logger:  logger,
	}
}

// TXTRecords returns the TXT records advertised for a server name.
func (s *Service) TXTRecords(name string) []string {
	return []string{
		"name=" + name,
		"version=" + s.version,
		"api=" + APIVersion,
		"path=/api/v1",
	}
}

// Start begins advertising the server. Call it once the HTTP listener is up.
// Errors are usually non-fatal, e.g. multicast is unavailable in containers.
func (s *Service) Start(name string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
	}

	host, err := os.Hostname()
	if err != nil {
		host = "kanine-server"
	}
	if name == "" {
		name = host
	}

	service, err := mdns.NewMDNSService(
		name,               // Instance name
		ServiceType,        // Service type
		"",                 // Domain (empty = .local)
		"",                 // Host (empty = system hostname)
		port,               // Port
		nil,                // IPs (nil = all interfaces)
		s.TXTRecords(name), // TXT records
	)
	if err != nil {
		return fmt.Errorf("create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("start mDNS server: %w", err)
	}
	s.server = server

	s.logger.Info("mDNS advertisement started",
		"service", ServiceType,
		"port", port,
		"name", name,
	)
	return nil
}

// Stop stops advertising. Safe to call multiple times or if never started.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		_ = s.server.Shutdown()
		s.server = nil
		s.logger.Info("mDNS advertisement stopped")
	}
}

// Running reports whether the service is currently advertising.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil
}
