package render

import (
	"strings"
	"testing"
)

func TestValidateLink(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "https", url: "https://example.com/path", wantErr: ""},
		{name: "relative", url: "/pricing", wantErr: ""},
		{name: "fragment", url: "#top", wantErr: ""},
		{name: "empty", url: "", wantErr: ""},
		{name: "mailto", url: "mailto:hi@example.com", wantErr: ""},
		{name: "tel", url: "tel:+15551234", wantErr: ""},
		{name: "javascript", url: "javascript:alert(1)", wantErr: "is not allowed"},
		{name: "data", url: "data:text/html;base64,PHNjcmlwdD4=", wantErr: "is not allowed"},
		{name: "http without host", url: "http:///path", wantErr: "must have a host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLink(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateLink() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("ValidateLink() expected error containing %q", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ValidateLink() error = %q, want to contain %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestValidateImageSource(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "cdn", url: "https://cdn.example.com/a.webp?width=800", wantErr: ""},
		{name: "relative", url: "/static/logo.png", wantErr: ""},
		{name: "png data url", url: "data:image/png;base64,iVBORw0KGgo=", wantErr: ""},
		{name: "html data url", url: "data:text/html;base64,PHNjcmlwdD4=", wantErr: "not a base64 image"},
		{name: "file scheme", url: "file:///etc/passwd", wantErr: "URL scheme must be http or https"},
		{name: "localhost", url: "http://localhost/a.png", wantErr: "localhost are not allowed"},
		{name: "loopback", url: "http://127.0.0.1/a.png", wantErr: "loopback addresses are not allowed"},
		{name: "private", url: "http://192.168.1.1/a.png", wantErr: "private network addresses are not allowed"},
		{name: "link-local", url: "http://169.254.169.254/latest", wantErr: "link-local addresses are not allowed"},
		{name: "unspecified", url: "http://0.0.0.0/a.png", wantErr: "unspecified addresses are not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageSource(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateImageSource() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("ValidateImageSource() expected error containing %q", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ValidateImageSource() error = %q, want to contain %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}
