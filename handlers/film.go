package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/framegallerybackend/config"
	"github.com/camden-git/framegallerybackend/media"
	"github.com/camden-git/framegallerybackend/models"
	"github.com/camden-git/framegallerybackend/realtime"
	"github.com/camden-git/framegallerybackend/repository"
	"github.com/camden-git/framegallerybackend/visibility"
)

const maxUploadFormMemory = 32 << 20

type FilmHandler struct {
	FilmRepo  repository.FilmRepositoryInterface
	Uploader  media.Uploader
	Processor *media.Processor
	Hub       *realtime.Hub
	Setting   *visibility.Setting
	Cfg       config.Config
}

func (fh *FilmHandler) ListFilms(w http.ResponseWriter, r *http.Request) {
	includeExplicit := includeExplicitFromRequest(r, fh.Setting)

	films, err := fh.FilmRepo.ListAll(includeExplicit)
	if err != nil {
		log.Printf("Error listing films: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to retrieve films")
		return
	}
	if films == nil {
		films = []models.Film{}
	}
	writeJSON(w, http.StatusOK, films)
}

func (fh *FilmHandler) GetFilm(w http.ResponseWriter, r *http.Request) {
	filmID := chi.URLParam(r, "film_id")

	film, err := fh.FilmRepo.GetByID(filmID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, CodeNotFound, "film not found")
		} else {
			log.Printf("Error getting film %s: %v", filmID, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to retrieve film")
		}
		return
	}
	writeJSON(w, http.StatusOK, film)
}

// splitList turns a comma-separated form value into a trimmed list,
// dropping empty entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// CreateFilm handles the admin film upload form: metadata fields plus a
// poster file. Validation happens before any network call; the poster is
// processed and uploaded before the record is written, so a failed
// upload never leaves a partial film behind.
func (fh *FilmHandler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadFormMemory); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "invalid multipart form: "+err.Error())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	letterboxdLink := strings.TrimSpace(r.FormValue("letterboxd_link"))
	if name == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "film name is required")
		return
	}
	if letterboxdLink == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "letterboxd link is required")
		return
	}

	rating, err := strconv.ParseFloat(r.FormValue("letterboxd_rating"), 64)
	if err != nil || rating < 0 || rating > 10 {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "letterboxd_rating must be a number between 0 and 10")
		return
	}

	posterFile, posterHeader, err := r.FormFile("poster")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "poster image is required")
		return
	}
	defer posterFile.Close()

	isExplicit, _ := strconv.ParseBool(r.FormValue("is_explicit"))

	prepared, err := fh.Processor.Prepare(posterFile)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "could not process poster: "+err.Error())
		return
	}

	rawURL, err := fh.Uploader.Upload(r.Context(), prepared, media.UploadFilename(), fh.Cfg.PosterFolder)
	if err != nil {
		log.Printf("Error uploading poster %s: %v", posterHeader.Filename, err)
		WriteAPIError(w, http.StatusBadGateway, CodeUploadFailed, "poster upload failed")
		return
	}
	posterURL := media.DeliveryURL(rawURL, fh.Cfg.DeliverySegment)

	film := &models.Film{
		Name:             name,
		LetterboxdLink:   letterboxdLink,
		LetterboxdRating: rating,
		PosterURL:        posterURL,
		IsExplicit:       isExplicit,
	}

	// optional fields are only set when the form provided a value
	if director := strings.TrimSpace(r.FormValue("director")); director != "" {
		film.Director = &director
	}
	if genre := splitList(r.FormValue("genre")); len(genre) > 0 {
		film.Genre = genre
	}
	if cast := splitList(r.FormValue("cast")); len(cast) > 0 {
		film.Cast = cast
	}
	if plot := strings.TrimSpace(r.FormValue("plot")); plot != "" {
		film.Plot = &plot
	}
	if adminName := strings.TrimSpace(r.FormValue("admin_name")); adminName != "" {
		film.AdminName = &adminName
	}
	if adminReview := strings.TrimSpace(r.FormValue("admin_review")); adminReview != "" {
		film.AdminReview = &adminReview
	}
	if yearStr := strings.TrimSpace(r.FormValue("release_year")); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "release_year must be an integer")
			return
		}
		film.ReleaseYear = &year
	}

	if err := fh.FilmRepo.Create(film); err != nil {
		log.Printf("Error creating film '%s': %v", name, err)
		WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to create film")
		return
	}

	fh.Hub.Broadcast(realtime.Event{Type: realtime.EventFilmCreated, FilmID: film.ID})
	writeJSON(w, http.StatusCreated, film)
}

type updateFilmRequest struct {
	Name             *string   `json:"name"`
	LetterboxdLink   *string   `json:"letterboxd_link"`
	LetterboxdRating *float64  `json:"letterboxd_rating"`
	IsExplicit       *bool     `json:"is_explicit"`
	ReleaseYear      *int      `json:"release_year"`
	Director         *string   `json:"director"`
	Genre            *[]string `json:"genre"`
	Cast             *[]string `json:"cast"`
	Plot             *string   `json:"plot"`
	AdminName        *string   `json:"admin_name"`
	AdminReview      *string   `json:"admin_review"`
}

// UpdateFilm merges the provided fields into an existing film. Absent
// fields stay untouched; fields explicitly present are written even when
// empty or false, which is how an admin clears a value.
func (fh *FilmHandler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	filmID := chi.URLParam(r, "film_id")

	var req updateFilmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body: "+err.Error())
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "film name cannot be empty")
		return
	}
	if req.LetterboxdRating != nil && (*req.LetterboxdRating < 0 || *req.LetterboxdRating > 10) {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "letterboxd_rating must be between 0 and 10")
		return
	}

	input := repository.UpdateFilmInput{
		Name:             req.Name,
		LetterboxdLink:   req.LetterboxdLink,
		LetterboxdRating: req.LetterboxdRating,
		IsExplicit:       req.IsExplicit,
		ReleaseYear:      req.ReleaseYear,
		Director:         req.Director,
		Genre:            req.Genre,
		Cast:             req.Cast,
		Plot:             req.Plot,
		AdminName:        req.AdminName,
		AdminReview:      req.AdminReview,
	}

	if err := fh.FilmRepo.Update(filmID, input); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, CodeNotFound, "film not found")
		} else {
			log.Printf("Error updating film %s: %v", filmID, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to update film")
		}
		return
	}

	updated, err := fh.FilmRepo.GetByID(filmID)
	if err != nil {
		log.Printf("Error fetching updated film %s: %v", filmID, err)
		writeJSON(w, http.StatusOK, map[string]string{"message": "film updated"})
		return
	}

	fh.Hub.Broadcast(realtime.Event{Type: realtime.EventFilmUpdated, FilmID: filmID})
	writeJSON(w, http.StatusOK, updated)
}

// DeleteFilm removes a film. Deletion is rejected while frames still
// reference the film, so stored frames are never silently orphaned.
func (fh *FilmHandler) DeleteFilm(w http.ResponseWriter, r *http.Request) {
	filmID := chi.URLParam(r, "film_id")

	if err := fh.FilmRepo.Delete(filmID); err != nil {
		switch {
		case errors.Is(err, repository.ErrFilmHasFrames):
			WriteAPIError(w, http.StatusConflict, CodeConflict, "film still has frames; delete them first")
		case errors.Is(err, gorm.ErrRecordNotFound):
			WriteAPIError(w, http.StatusNotFound, CodeNotFound, "film not found")
		default:
			log.Printf("Error deleting film %s: %v", filmID, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to delete film")
		}
		return
	}

	fh.Hub.Broadcast(realtime.Event{Type: realtime.EventFilmDeleted, FilmID: filmID})
	w.WriteHeader(http.StatusNoContent)
}
