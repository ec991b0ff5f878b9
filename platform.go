package ingest

import (
	"strings"

	"github.com/zombar/linksaver/models"
)

// DetectPlatform classifies a URL by host substring. Checks run in a
// fixed order and the first hit wins; anything unrecognized is other.
func DetectPlatform(targetURL string) models.Platform {
	u := strings.ToLower(targetURL)
	switch {
	case strings.Contains(u, "instagram.com"):
		return models.PlatformInstagram
	case strings.Contains(u, "youtube.com"), strings.Contains(u, "youtu.be"):
		return models.PlatformYouTube
	case strings.Contains(u, "twitter.com"), strings.Contains(u, "x.com"):
		return models.PlatformTwitter
	case strings.Contains(u, "facebook.com"), strings.Contains(u, "fb.watch"):
		return models.PlatformFacebook
	default:
		return models.PlatformOther
	}
}
