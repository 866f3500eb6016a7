package provider

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/twigprompt/twig/internal/config"
)

// InterfaceLister abstracts interface enumeration for tests. Go's
// standard library (net.Interfaces/net.Interface.Addrs) is the idiomatic
// way to do this — no pack example reaches past it for IP enumeration,
// so no third-party dependency is introduced here.
type InterfaceLister interface {
	Interfaces() ([]net.Interface, error)
}

type osInterfaceLister struct{}

func (osInterfaceLister) Interfaces() ([]net.Interface, error) {
	return net.Interfaces()
}

// IPProvider owns the ip section.
type IPProvider struct {
	lister InterfaceLister
}

// NewIPProvider returns an IPProvider backed by the real network stack.
func NewIPProvider() *IPProvider {
	return &IPProvider{lister: osInterfaceLister{}}
}

// NewIPProviderWithLister is used by tests to inject a fake interface list.
func NewIPProviderWithLister(l InterfaceLister) *IPProvider {
	return &IPProvider{lister: l}
}

func (p *IPProvider) Name() string { return "ip" }

func (p *IPProvider) Sections() []string { return []string{"ip"} }

func (p *IPProvider) DefaultConfig() map[string]any {
	return map[string]any{"ip": map[string]any{"prefer_ipv6": false}}
}

func (p *IPProvider) Cacheable() bool         { return true }
func (p *IPProvider) CacheTTL() time.Duration { return 30 * time.Second }

type candidateAddr struct {
	ifaceName string
	ip        net.IP
}

func (p *IPProvider) Collect(_ context.Context, cfg *config.Config, validate bool) (Vars, error) {
	vars := make(Vars)

	ifaces, err := p.lister.Interfaces()
	if err != nil {
		if validate {
			return nil, fmt.Errorf("list network interfaces: %w", err)
		}
		return vars, nil
	}

	var candidates []candidateAddr
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipnet.IP
			if ip.IsLinkLocalUnicast() {
				continue
			}
			candidates = append(candidates, candidateAddr{ifaceName: iface.Name, ip: ip})
		}
	}

	if len(candidates) == 0 {
		if validate {
			return nil, fmt.Errorf("no usable network interface found")
		}
		return vars, nil
	}

	explicit := cfg.IP.Interface
	chosen, ok := selectCandidate(candidates, explicit, cfg.IP.PreferIPv6)
	if !ok {
		if validate {
			return nil, fmt.Errorf("configured interface %q not found", explicit)
		}
		// A configured interface that is absent falls back to the first
		// usable one.
		chosen, ok = selectCandidate(candidates, "", cfg.IP.PreferIPv6)
		if !ok {
			return vars, nil
		}
	}

	vars["ip_interface"] = chosen.ifaceName
	vars["ip_address"] = chosen.ip.String()
	if chosen.ip.To4() != nil {
		vars["ip_version"] = "4"
	} else {
		vars["ip_version"] = "6"
	}

	return vars, nil
}

func selectCandidate(candidates []candidateAddr, explicitIface string, preferIPv6 bool) (candidateAddr, bool) {
	if explicitIface != "" {
		var v4, v6 candidateAddr
		var haveV4, haveV6 bool
		for _, c := range candidates {
			if c.ifaceName != explicitIface {
				continue
			}
			if c.ip.To4() != nil {
				v4, haveV4 = c, true
			} else {
				v6, haveV6 = c, true
			}
		}
		return pickByPreference(v4, haveV4, v6, haveV6, preferIPv6)
	}

	var v4, v6 candidateAddr
	var haveV4, haveV6 bool
	for _, c := range candidates {
		if c.ip.To4() != nil {
			if !haveV4 {
				v4, haveV4 = c, true
			}
		} else if !haveV6 {
			v6, haveV6 = c, true
		}
	}
	return pickByPreference(v4, haveV4, v6, haveV6, preferIPv6)
}

func pickByPreference(v4 candidateAddr, haveV4 bool, v6 candidateAddr, haveV6 bool, preferIPv6 bool) (candidateAddr, bool) {
	if preferIPv6 && haveV6 {
		return v6, true
	}
	if haveV4 {
		return v4, true
	}
	if haveV6 {
		return v6, true
	}
	return candidateAddr{}, false
}
