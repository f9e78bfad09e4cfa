// Package visibility is the single source of truth for whether
// explicit-marked content is shown. Filtering is all-or-nothing: an
// includeExplicit of false excludes every record whose explicit flag is
// set, true includes everything.
package visibility

import "github.com/camden-git/framegallerybackend/models"

// Key is the fixed name under which the flag is persisted, both in the
// server-side Store and in the client cookie.
const Key = "explicitMode"

// Visible reports whether a record with the given explicit flag should
// appear in a listing.
func Visible(includeExplicit, isExplicit bool) bool {
	return includeExplicit || !isExplicit
}

// FilterFilms returns the films visible under the given flag, preserving
// order.
func FilterFilms(films []models.Film, includeExplicit bool) []models.Film {
	if includeExplicit {
		return films
	}
	out := make([]models.Film, 0, len(films))
	for _, f := range films {
		if !f.IsExplicit {
			out = append(out, f)
		}
	}
	return out
}

// FilterFrames returns the frames visible under the given flag,
// preserving order.
func FilterFrames(frames []models.Frame, includeExplicit bool) []models.Frame {
	if includeExplicit {
		return frames
	}
	out := make([]models.Frame, 0, len(frames))
	for _, f := range frames {
		if !f.IsExplicit {
			out = append(out, f)
		}
	}
	return out
}
