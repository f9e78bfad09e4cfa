package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/camden-git/framegallerybackend/visibility"
)

const visibilityCookieMaxAge = 365 * 24 * 60 * 60

// VisibilityHandler exposes the explicit-content flag. The flag is
// client-persisted and unauthenticated; it is a content preference, not
// a security control. The server-side Setting acts as the default for
// clients that have never toggled and as the observable container whose
// subscribers fan the change out to mounted views.
type VisibilityHandler struct {
	Setting *visibility.Setting
}

// includeExplicitFromRequest resolves the visibility flag for one
// request: an explicit include_explicit query parameter wins, then the
// persisted cookie, then the server-side default.
func includeExplicitFromRequest(r *http.Request, setting *visibility.Setting) bool {
	if raw := r.URL.Query().Get("include_explicit"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return false
		}
		return value
	}

	if cookie, err := r.Cookie(visibility.Key); err == nil {
		return cookie.Value == "true"
	}

	if setting != nil {
		return setting.Read()
	}
	return false
}

// GetVisibility reports the flag as this client currently sees it.
func (vh *VisibilityHandler) GetVisibility(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"include_explicit": includeExplicitFromRequest(r, vh.Setting),
	})
}

// SetVisibility persists the flag in a cookie for this client and in the
// server-side Setting, whose subscribers broadcast the change to every
// connected view.
func (vh *VisibilityHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IncludeExplicit *bool `json:"include_explicit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IncludeExplicit == nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "body must contain include_explicit")
		return
	}
	value := *req.IncludeExplicit

	cookieValue := "false"
	if value {
		cookieValue = "true"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     visibility.Key,
		Value:    cookieValue,
		Path:     "/",
		MaxAge:   visibilityCookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	})

	if err := vh.Setting.Set(value); err != nil {
		WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to persist visibility flag")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"include_explicit": value})
}
