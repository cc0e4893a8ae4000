package view

import "testing"

func TestImageEndpoints(t *testing.T) {
	t.Parallel()

	defaults := DefaultImageEndpoints()
	custom := ImageEndpoints{
		Screenshot: "https://shots.example/?u={url_escaped}&h={host}",
		Favicon:    "https://icons.example/{host}.png",
		Flag:       "https://flags.example/{cc}.png",
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "default screenshot embeds the raw url",
			got:  defaults.ScreenshotURL("https://example.com/a", "example.com"),
			want: "https://image.thum.io/get/width/1200/https://example.com/a",
		},
		{
			name: "default favicon uses the host",
			got:  defaults.FaviconURL("https://example.com/a", "example.com"),
			want: "https://www.google.com/s2/favicons?domain=example.com&sz=64",
		},
		{
			name: "default flag lower-cases the country code",
			got:  defaults.FlagURL("US"),
			want: "https://flagcdn.com/us.svg",
		},
		{
			name: "escaped url placeholder",
			got:  custom.ScreenshotURL("https://example.com/a?b=c", "example.com"),
			want: "https://shots.example/?u=https%3A%2F%2Fexample.com%2Fa%3Fb%3Dc&h=example.com",
		},
		{
			name: "custom favicon",
			got:  custom.FaviconURL("", "xn--bcher-kva.example"),
			want: "https://icons.example/xn--bcher-kva.example.png",
		},
		{
			name: "empty target has no screenshot",
			got:  defaults.ScreenshotURL("", "example.com"),
			want: "",
		},
		{
			name: "empty host has no favicon",
			got:  defaults.FaviconURL("https://example.com", ""),
			want: "",
		},
		{
			name: "empty country code has no flag",
			got:  defaults.FlagURL(""),
			want: "",
		},
		{
			name: "disabled endpoint",
			got:  ImageEndpoints{}.FlagURL("nl"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
