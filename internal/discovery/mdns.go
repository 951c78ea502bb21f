// ABOUTME: mDNS service discovery for dancefloor servers
// ABOUTME: Servers advertise _dancefloor._tcp; watchers browse for them
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/sirupsen/logrus"
)

const (
	// ServiceType is the DNS-SD service advertised by floor servers
	ServiceType = "_dancefloor._tcp"

	queryTimeout  = 3 * time.Second
	browseBackoff = time.Second
)

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	// TXT records advertised alongside the service, e.g. "path=/dancefloor"
	Info []string
}

// Manager handles mDNS operations
type Manager struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	servers chan *ServerInfo

	mu     sync.Mutex
	server *mdns.Server
	seen   map[string]bool
}

// ServerInfo describes a discovered server
type ServerInfo struct {
	Name string
	Host string
	Port int
	Info map[string]string
}

// Addr returns host:port for dialing
func (s *ServerInfo) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServerInfo, 10),
		seen:    make(map[string]bool),
	}
}

// Advertise advertises this floor server via mDNS
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.config.Info,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	m.mu.Lock()
	m.server = server
	m.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Manager.Advertise",
		"name":     m.config.ServiceName,
		"port":     m.config.Port,
		"type":     ServiceType,
	}).Info("Advertising mDNS service")

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for floor servers until Stop
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop continuously browses for servers
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for entry := range entries {
				server, ok := entryToServer(entry)
				if !ok || !m.firstSighting(server) {
					continue
				}

				logrus.WithFields(logrus.Fields{
					"name": server.Name,
					"addr": server.Addr(),
				}).Info("Discovered server")

				select {
				case m.servers <- server:
				case <-m.ctx.Done():
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: ServiceType,
			Domain:  "local",
			Timeout: queryTimeout,
			Entries: entries,
		}

		if err := mdns.Query(params); err != nil {
			logrus.WithError(err).Debug("mDNS query failed")
		}
		close(entries)
		<-done

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(browseBackoff):
		}
	}
}

// firstSighting reports whether addr has not been emitted before
func (m *Manager) firstSighting(s *ServerInfo) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[s.Addr()] {
		return false
	}
	m.seen[s.Addr()] = true
	return true
}

// entryToServer converts a browse result, skipping other services and
// entries without an address
func entryToServer(entry *mdns.ServiceEntry) (*ServerInfo, bool) {
	if entry == nil || !strings.Contains(entry.Name, ServiceType) {
		return nil, false
	}

	var host string
	switch {
	case entry.AddrV4 != nil:
		host = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		host = entry.AddrV6.String()
	default:
		return nil, false
	}

	name := entry.Name
	if i := strings.Index(name, "."+ServiceType); i > 0 {
		name = name[:i]
	}

	info := make(map[string]string, len(entry.InfoFields))
	for _, field := range entry.InfoFields {
		k, v, _ := strings.Cut(field, "=")
		info[k] = v
	}

	return &ServerInfo{Name: name, Host: host, Port: entry.Port, Info: info}, true
}

// Servers returns the channel of discovered servers
func (m *Manager) Servers() <-chan *ServerInfo {
	return m.servers
}

// Stop stops advertising and browsing
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
