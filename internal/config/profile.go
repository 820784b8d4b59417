package config

import (
	"fmt"
	"time"
)

// Profile holds the connection settings for one classification service.
type Profile struct {
	// Endpoint is the base URL of the service.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Timeout overrides the lookup timeout ("45s", "2m").
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// ProxyAddress is a SOCKS5 proxy ("host:port").
	ProxyAddress string `yaml:"proxy,omitempty"`

	// Cookie is an HTTP cookie to send with every lookup.
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers, e.g. an API key.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .catchphish configuration file.
type File struct {
	// Defaults apply to every lookup unless a selected profile overrides them.
	Defaults Profile `yaml:"defaults,omitempty"`

	// Profiles maps profile names to their settings.
	Profiles map[string]Profile `yaml:"profiles,omitempty"`
}

// GetProfile returns the named profile merged over the defaults.
// An empty name returns the defaults alone.
func (cf *File) GetProfile(name string) (Profile, error) {
	result := cf.Defaults
	if result.Headers != nil {
		headers := make(map[string]string, len(result.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if name == "" {
		return result, nil
	}

	p, ok := cf.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
	}

	if p.Endpoint != "" {
		result.Endpoint = p.Endpoint
	}
	if p.Timeout > 0 {
		result.Timeout = p.Timeout
	}
	if p.ProxyAddress != "" {
		result.ProxyAddress = p.ProxyAddress
	}
	if p.Cookie != "" {
		result.Cookie = p.Cookie
	}
	if p.UserAgent != "" {
		result.UserAgent = p.UserAgent
	}
	if len(p.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(p.Headers))
		}
		for k, v := range p.Headers {
			result.Headers[k] = v
		}
	}

	return result, nil
}
