package media

import "strings"

// uploadPathMarker is the fixed insertion point in host delivery URLs.
const uploadPathMarker = "/upload/"

// DeliveryURL rewrites a canonical URL returned by the image host to
// request a specific quality/format profile, by splicing the
// transformation segment immediately after the "/upload/" path marker:
//
//	https://host/image/upload/v1/abc.jpg -> https://host/image/upload/q_auto,f_auto/v1/abc.jpg
//
// The rewritten URL, not the raw one, is what gets stored on records.
// A URL without the marker is returned unmodified, as is a URL that
// already carries the segment.
func DeliveryURL(rawURL, segment string) string {
	if segment == "" {
		return rawURL
	}

	idx := strings.Index(rawURL, uploadPathMarker)
	if idx < 0 {
		return rawURL
	}

	insertAt := idx + len(uploadPathMarker)
	if strings.HasPrefix(rawURL[insertAt:], segment+"/") {
		return rawURL
	}
	return rawURL[:insertAt] + segment + "/" + rawURL[insertAt:]
}
