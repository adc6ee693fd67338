// ABOUTME: mDNS service discovery for the hxplay remote endpoint
// ABOUTME: Advertises a running remote and browses for other instances on the LAN
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD type of the remote control endpoint
const ServiceType = "_hxplay._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
	// Path is the websocket path advertised in the TXT record
	Path string
}

// Manager handles mDNS operations
type Manager struct {
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	instances chan *Instance
}

// Instance describes a discovered hxplay remote
type Instance struct {
	Name string
	Host string
	Port int
	Path string
}

// URL returns the websocket URL of the instance
func (i *Instance) URL() string {
	return fmt.Sprintf("ws://%s%s", net.JoinHostPort(i.Host, fmt.Sprint(i.Port)), i.Path)
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	if config.Path == "" {
		config.Path = "/hxplay"
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		instances: make(chan *Instance, 10),
	}
}

// Advertise announces the remote endpoint until Stop is called
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
		[]string{"path=" + m.config.Path},
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

// Browse queries the network once for timeout and returns the instances found
func (m *Manager) Browse(timeout time.Duration) ([]*Instance, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan struct{})
	var found []*Instance

	go func() {
		defer close(done)
		for entry := range entries {
			if !strings.Contains(entry.Name, ServiceType) {
				continue
			}
			inst := fromEntry(entry)
			log.Printf("Discovered hxplay instance: %s at %s:%d", inst.Name, inst.Host, inst.Port)
			found = append(found, inst)
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Timeout = timeout
	params.Entries = entries

	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mdns query failed: %w", err)
	}
	return found, nil
}

func fromEntry(entry *mdns.ServiceEntry) *Instance {
	inst := &Instance{
		Name: strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Port: entry.Port,
		Path: "/hxplay",
	}
	if entry.AddrV4 != nil {
		inst.Host = entry.AddrV4.String()
	} else if entry.AddrV6 != nil {
		inst.Host = entry.AddrV6.String()
	} else {
		inst.Host = entry.Host
	}
	for _, field := range entry.InfoFields {
		if path, ok := strings.CutPrefix(field, "path="); ok {
			inst.Path = path
		}
	}
	return inst
}

// Stop stops advertising
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
