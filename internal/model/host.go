package model

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/unicode/norm"
)

// HostInfo holds both renderings of a URL's host.
type HostInfo struct {
	// Unicode is the NFC-normalized display form.
	Unicode string `json:"unicode"`

	// ASCII is the IDNA (punycode) form that DNS actually resolves.
	ASCII string `json:"ascii"`
}

// IsInternationalized reports whether the host contains non-ASCII labels.
// Such hosts are a common vehicle for homograph phishing, so writers show
// the ASCII form next to the Unicode one.
func (h HostInfo) IsInternationalized() bool {
	return h.Unicode != h.ASCII
}

// ParseHost extracts the host of rawURL and computes its Unicode and ASCII
// forms. A missing scheme is tolerated ("example.com/login").
func ParseHost(rawURL string) (HostInfo, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return HostInfo{}, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return HostInfo{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	host := u.Hostname()
	if host == "" {
		return HostInfo{}, fmt.Errorf("%w: no host in %q", ErrInvalidURL, rawURL)
	}

	host = strings.ToLower(norm.NFC.String(host))

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return HostInfo{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	unicode, err := idna.Lookup.ToUnicode(ascii)
	if err != nil {
		unicode = host
	}

	return HostInfo{Unicode: unicode, ASCII: ascii}, nil
}
