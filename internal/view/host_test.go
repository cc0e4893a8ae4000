package view

import "testing"

func TestHostOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "https url", target: "https://www.example.com/path?q=1", want: "www.example.com"},
		{name: "no scheme", target: "example.com/login", want: "example.com"},
		{name: "upper case", target: "HTTP://Example.COM", want: "example.com"},
		{name: "with port", target: "http://example.com:8080/", want: "example.com"},
		{name: "trailing dot", target: "http://example.com./", want: "example.com"},
		{name: "ipv4", target: "http://93.184.216.34/", want: "93.184.216.34"},
		{name: "idn", target: "https://bücher.example/", want: "xn--bcher-kva.example"},
		{name: "empty", target: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HostOf(tt.target); got != tt.want {
				t.Errorf("HostOf(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		host string
		want string
	}{
		{host: "www.example.com", want: "example.com"},
		{host: "a.b.example.co.uk", want: "example.co.uk"},
		{host: "example.com", want: "example.com"},
		{host: "93.184.216.34", want: "93.184.216.34"},
		{host: "com", want: "com"},
		{host: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			if got := RegistrableDomain(tt.host); got != tt.want {
				t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}
