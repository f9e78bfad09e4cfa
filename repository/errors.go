// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow handlers to distinguish
// failure scenarios. ErrFilmHasFrames signals that a film cannot be
// deleted while frame records still reference it; handlers translate it
// into an HTTP 409 response.
package repository

import "errors"

// ErrFilmHasFrames is returned when a film delete is attempted while
// frames still reference the film.
var ErrFilmHasFrames = errors.New("film has frames")
