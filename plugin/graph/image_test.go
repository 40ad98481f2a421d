package graph

import "testing"

func TestNormalizeImageURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{
			name:     "bare iiif service",
			raw:      "https://ids.lib.harvard.edu/ids/iiif/18737898",
			expected: "https://ids.lib.harvard.edu/ids/iiif/18737898/full/800,/0/default.jpg",
		},
		{
			name:     "iiif service with trailing slash",
			raw:      "https://ids.lib.harvard.edu/ids/iiif/18737898/",
			expected: "https://ids.lib.harvard.edu/ids/iiif/18737898/full/800,/0/default.jpg",
		},
		{
			name:     "already a full region request",
			raw:      "https://ids.lib.harvard.edu/ids/iiif/18737898/full/full/0/default.jpg",
			expected: "https://ids.lib.harvard.edu/ids/iiif/18737898/full/full/0/default.jpg",
		},
		{
			name:     "direct image",
			raw:      "https://nrs.harvard.edu/urn-3:HUAM:756524.jpg",
			expected: "https://nrs.harvard.edu/urn-3:HUAM:756524.jpg",
		},
		{
			name:     "iiif path ending in an image extension",
			raw:      "https://example.org/iiif/thumb.PNG?size=200",
			expected: "https://example.org/iiif/thumb.PNG?size=200",
		},
		{
			name:     "non iiif url",
			raw:      "https://example.org/objects/123",
			expected: "https://example.org/objects/123",
		},
		{
			name:     "empty",
			raw:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeImageURL(tt.raw); got != tt.expected {
				t.Errorf("NormalizeImageURL(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}
