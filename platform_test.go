package ingest

import (
	"testing"

	"github.com/zombar/linksaver/models"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url      string
		expected models.Platform
	}{
		{"https://www.instagram.com/reel/abc/", models.PlatformInstagram},
		{"https://instagram.com/p/xyz", models.PlatformInstagram},
		{"https://www.youtube.com/watch?v=abc", models.PlatformYouTube},
		{"https://youtu.be/abc", models.PlatformYouTube},
		{"https://twitter.com/user/status/1", models.PlatformTwitter},
		{"https://x.com/user/status/1", models.PlatformTwitter},
		{"https://www.facebook.com/watch/?v=1", models.PlatformFacebook},
		{"https://fb.watch/abc/", models.PlatformFacebook},
		{"HTTPS://WWW.INSTAGRAM.COM/REEL/ABC/", models.PlatformInstagram},
		{"https://example.com/article", models.PlatformOther},
	}

	for _, tt := range tests {
		if got := DetectPlatform(tt.url); got != tt.expected {
			t.Errorf("DetectPlatform(%q) = %q, expected %q", tt.url, got, tt.expected)
		}
	}
}
