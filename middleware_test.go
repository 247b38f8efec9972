package folio

import "testing"

func TestCachePolicy(t *testing.T) {
	tests := []struct {
		path, want string
	}{
		{"/assets/style.css", "public, max-age=31536000, immutable"},
		{"/public/me.jpg", "public, max-age=31536000, immutable"},
		{"/feed.xml", "public, max-age=3600"},
		{"/admin", "no-store"},
		{"/admin/blog/edit/3", "no-store"},
		{"/login", "no-store"},
		{"/contact", "no-store"},
		{"/administrator", "private, no-cache"},
		{"/", "private, no-cache"},
		{"/blog/3", "private, no-cache"},
	}
	for _, tt := range tests {
		if got := cachePolicy(tt.path); got != tt.want {
			t.Errorf("cachePolicy(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
