package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// RouterConfig is the persisted identity of this I3 endpoint plus the
// process settings needed to reach the upstream router.
type RouterConfig struct {
	RouterName    string `toml:"router_name"`
	Password      int64  `toml:"password"`
	MudlistID     int64  `toml:"mudlist_id"`
	ChanlistID    int64  `toml:"chanlist_id"`
	LoginPort     int    `toml:"login_port"`
	I3TCPPort     int    `toml:"i3_tcp_port"`
	I3UDPPort     int    `toml:"i3_udp_port"`
	LibVersion    string `toml:"lib_version"`
	LibName       string `toml:"lib_name"`
	DriverVersion string `toml:"driver_version"`
	MudType       string `toml:"mud_type"`
	OpenStatus    string `toml:"open_status"`
	AdminEmail    string `toml:"admin_email"`

	Services []string `toml:"services"`

	UpstreamName    string   `toml:"upstream_name"`
	UpstreamAddr    string   `toml:"upstream_addr"`
	AdminListenAddr string   `toml:"admin_listen_addr"`
	AdminToken      string   `toml:"admin_token"`
	CorsOrigins     []string `toml:"cors_origins"`
}

// Default returns the configuration written on first start.
func Default() RouterConfig {
	return RouterConfig{
		RouterName:      "*i4",
		Password:        0,
		MudlistID:       0,
		ChanlistID:      0,
		LoginPort:       1234,
		I3TCPPort:       1235,
		I3UDPPort:       1235,
		LibVersion:      "i4 0.1",
		LibName:         "i4",
		DriverVersion:   "i4 0.1",
		MudType:         "I3 client",
		OpenStatus:      "mudlib development",
		AdminEmail:      "admin@localhost",
		Services:        []string{"auth", "channel", "locate", "tell", "who"},
		UpstreamName:    "*dalet",
		UpstreamAddr:    "97.107.133.86:8787",
		AdminListenAddr: "127.0.0.1:9280",
	}
}

// Load reads a TOML file over Default. Keys the file does not set keep
// their defaults; unknown keys are rejected.
func Load(path string) (RouterConfig, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return RouterConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return RouterConfig{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.normalize()
	if err := Validate(cfg); err != nil {
		return RouterConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func (c *RouterConfig) normalize() {
	c.RouterName = strings.TrimSpace(c.RouterName)
	c.UpstreamName = strings.TrimSpace(c.UpstreamName)
	c.UpstreamAddr = strings.TrimSpace(c.UpstreamAddr)
	c.AdminListenAddr = strings.TrimSpace(c.AdminListenAddr)
	c.AdminToken = strings.TrimSpace(c.AdminToken)
	services := c.Services[:0]
	for _, s := range c.Services {
		if s = strings.TrimSpace(s); s != "" {
			services = append(services, s)
		}
	}
	c.Services = services
}

func Validate(cfg RouterConfig) error {
	if strings.TrimSpace(cfg.RouterName) == "" {
		return fmt.Errorf("router_name is required")
	}
	if strings.TrimSpace(cfg.UpstreamAddr) == "" {
		return fmt.Errorf("upstream_addr is required")
	}
	ports := []struct {
		key  string
		port int
	}{
		{"login_port", cfg.LoginPort},
		{"i3_tcp_port", cfg.I3TCPPort},
		{"i3_udp_port", cfg.I3UDPPort},
	}
	for _, p := range ports {
		if p.port < 1 || p.port > 65535 {
			return fmt.Errorf("%s %d out of range", p.key, p.port)
		}
	}
	seen := make(map[string]struct{}, len(cfg.Services))
	for i, s := range cfg.Services {
		if _, dup := seen[s]; dup {
			return fmt.Errorf("services[%d] duplicates %q", i, s)
		}
		seen[s] = struct{}{}
	}
	return nil
}
