package render

import (
	"fmt"
	"html/template"
	"net"
	"net/url"
	"regexp"
	"strings"
)

var imageDataURL = regexp.MustCompile(`^data:image/(png|jpe?g|gif|webp|svg\+xml);base64,[A-Za-z0-9+/=\s]*$`)

// ValidateLink checks a link target written into exported HTML. Relative
// links, fragments, http(s), mailto and tel are allowed.
func ValidateLink(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	switch strings.ToLower(parsed.Scheme) {
	case "":
		// Relative reference.
		return nil
	case "mailto", "tel":
		return nil
	case "http", "https":
		if parsed.Hostname() == "" {
			return fmt.Errorf("URL must have a host")
		}
		return nil
	default:
		return fmt.Errorf("URL scheme %q is not allowed", parsed.Scheme)
	}
}

// ValidateImageSource checks an image source. Besides http(s) and relative
// URLs, base64 image data URLs are allowed since uploads are embedded that
// way.
func ValidateImageSource(raw string) error {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "data:") {
		if !imageDataURL.MatchString(raw) {
			return fmt.Errorf("data URL is not a base64 image")
		}
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "":
		return nil
	case "http", "https":
		return validateHost(parsed.Hostname())
	default:
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
}

// validateHost rejects image hosts a recipient's mail client could never
// reach: localhost and internal addresses.
func validateHost(host string) error {
	if host == "" {
		return fmt.Errorf("URL must have a host")
	}
	hostLower := strings.ToLower(host)
	if hostLower == "localhost" || hostLower == "localhost.localdomain" {
		return fmt.Errorf("images on localhost are not allowed")
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	switch {
	case ip.IsLoopback():
		return fmt.Errorf("images on loopback addresses are not allowed")
	case ip.IsPrivate():
		return fmt.Errorf("images on private network addresses are not allowed")
	case ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast():
		return fmt.Errorf("images on link-local addresses are not allowed")
	case ip.IsUnspecified():
		return fmt.Errorf("images on unspecified addresses are not allowed")
	}
	return nil
}

func safeHref(raw string) template.URL {
	if err := ValidateLink(raw); err != nil {
		return "#"
	}
	return template.URL(strings.TrimSpace(raw))
}

func safeSrc(raw string) template.URL {
	if raw == "" || ValidateImageSource(raw) != nil {
		return ""
	}
	return template.URL(strings.TrimSpace(raw))
}
