package graph

import (
	"net/url"
	"path"
	"strings"
)

// IIIFFullSuffix requests an 800px-wide rendition from an IIIF image service.
const IIIFFullSuffix = "/full/800,/0/default.jpg"

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".tif":  true,
	".tiff": true,
}

// NormalizeImageURL turns a bare IIIF image service URL into a direct image
// URL. URLs that already address an image are returned unchanged.
func NormalizeImageURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "/full/") || hasImageExtension(raw) {
		return raw
	}
	if strings.Contains(raw, "/iiif/") {
		return strings.TrimRight(raw, "/") + IIIFFullSuffix
	}
	return raw
}

func hasImageExtension(raw string) bool {
	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		p = raw[:i]
	}
	return imageExtensions[strings.ToLower(path.Ext(p))]
}
