// ABOUTME: mDNS service discovery for the frame feed
// ABOUTME: Handles both advertisement (server side) and browsing (feed clients)
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the advertised mDNS service
const ServiceType = "_lanescope._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	Path        string
}

// Manager handles mDNS operations
type Manager struct {
	config Config
	ctx    context.Context
	cancel context.CancelFunc
	feeds  chan *FeedInfo
}

// FeedInfo describes a discovered feed
type FeedInfo struct {
	Name string
	Host string
	Port int
	Path string
}

// Addr returns host:port
func (f *FeedInfo) Addr() string {
	return net.JoinHostPort(f.Host, fmt.Sprintf("%d", f.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config: config,
		ctx:    ctx,
		cancel: cancel,
		feeds:  make(chan *FeedInfo, 10),
	}
}

// txtRecords returns the TXT records advertised with the service
func (m *Manager) txtRecords() []string {
	if m.config.Path == "" {
		return nil
	}
	return []string{"path=" + m.config.Path}
}

// Advertise advertises this feed via mDNS
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
		m.txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for feeds until Stop
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop continuously browses for feeds
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				feed := feedFromEntry(entry)
				if feed == nil {
					continue
				}

				log.Printf("Discovered feed: %s at %s", feed.Name, feed.Addr())

				select {
				case m.feeds <- feed:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: ServiceType,
			Domain:  "local",
			Timeout: 3 * time.Second,
			Entries: entries,
		}

		if err := mdns.Query(params); err != nil {
			log.Printf("mDNS query failed: %v", err)
		}
		close(entries)
	}
}

// feedFromEntry converts a service entry, skipping entries without IPv4
func feedFromEntry(entry *mdns.ServiceEntry) *FeedInfo {
	if entry.AddrV4 == nil {
		return nil
	}

	feed := &FeedInfo{
		Name: entry.Name,
		Host: entry.AddrV4.String(),
		Port: entry.Port,
		Path: "/",
	}
	for _, field := range entry.InfoFields {
		if len(field) > 5 && field[:5] == "path=" {
			feed.Path = field[5:]
		}
	}
	return feed
}

// Feeds returns the channel of discovered feeds
func (m *Manager) Feeds() <-chan *FeedInfo {
	return m.feeds
}

// Stop stops the discovery manager
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
