package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"

	"github.com/facette/natsort"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/framegallerybackend/config"
	"github.com/camden-git/framegallerybackend/media"
	"github.com/camden-git/framegallerybackend/models"
	"github.com/camden-git/framegallerybackend/realtime"
	"github.com/camden-git/framegallerybackend/repository"
	"github.com/camden-git/framegallerybackend/visibility"
)

const maxRecentFramesLimit = 100

type FrameHandler struct {
	FilmRepo  repository.FilmRepositoryInterface
	FrameRepo repository.FrameRepositoryInterface
	Uploader  media.Uploader
	Processor *media.Processor
	Hub       *realtime.Hub
	Setting   *visibility.Setting
	Cfg       config.Config
}

// ListFramesByFilm returns a film's frames ascending by display order.
func (fh *FrameHandler) ListFramesByFilm(w http.ResponseWriter, r *http.Request) {
	filmID := chi.URLParam(r, "film_id")
	includeExplicit := includeExplicitFromRequest(r, fh.Setting)

	if _, err := fh.FilmRepo.GetByID(filmID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, CodeNotFound, "film not found")
		} else {
			log.Printf("Error getting film %s for frames: %v", filmID, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to retrieve film")
		}
		return
	}

	frames, err := fh.FrameRepo.ListByFilm(filmID, includeExplicit)
	if err != nil {
		log.Printf("Error listing frames for film %s: %v", filmID, err)
		WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to retrieve frames")
		return
	}
	if frames == nil {
		frames = []models.Frame{}
	}
	writeJSON(w, http.StatusOK, frames)
}

// ListRecentFrames returns the newest frames across all films. The
// explicit filter runs before the limit, so a request for N visible
// frames returns N whenever the store holds that many.
func (fh *FrameHandler) ListRecentFrames(w http.ResponseWriter, r *http.Request) {
	includeExplicit := includeExplicitFromRequest(r, fh.Setting)

	limit := fh.Cfg.RecentFramesLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxRecentFramesLimit {
		limit = maxRecentFramesLimit
	}

	frames, err := fh.FrameRepo.ListRecent(limit, includeExplicit)
	if err != nil {
		log.Printf("Error listing recent frames: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to retrieve recent frames")
		return
	}
	if frames == nil {
		frames = []models.Frame{}
	}
	writeJSON(w, http.StatusOK, frames)
}

// UploadFrames handles the admin batch frame upload for one film. Files
// are ordered by natural filename sort, then each file is uploaded and
// its record written before the next file starts, keeping per-file
// progress deterministic and bounding image-host load to one upload in
// flight. A failed upload aborts the rest of the batch; already written
// frames stay.
func (fh *FrameHandler) UploadFrames(w http.ResponseWriter, r *http.Request) {
	filmID := chi.URLParam(r, "film_id")

	film, err := fh.FilmRepo.GetByID(filmID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, CodeNotFound, "film not found")
		} else {
			log.Printf("Error getting film %s for frame upload: %v", filmID, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to retrieve film")
		}
		return
	}

	if err := r.ParseMultipartForm(maxUploadFormMemory); err != nil {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "invalid multipart form: "+err.Error())
		return
	}

	files := r.MultipartForm.File["frames"]
	if len(files) == 0 {
		WriteAPIError(w, http.StatusBadRequest, CodeValidationFailed, "at least one frame file is required")
		return
	}
	isExplicit, _ := strconv.ParseBool(r.FormValue("is_explicit"))

	// natural filename order so frame_001.jpg .. frame_010.jpg land in
	// the order the admin expects
	sort.SliceStable(files, func(i, j int) bool {
		return natsort.Compare(files[i].Filename, files[j].Filename)
	})

	created := make([]models.Frame, 0, len(files))
	for i, header := range files {
		frame, err := fh.uploadOneFrame(r, film, header, isExplicit)
		if err != nil {
			log.Printf("Error uploading frame %s (file %d/%d): %v", header.Filename, i+1, len(files), err)
			status, code := http.StatusBadGateway, CodeUploadFailed
			if !errors.Is(err, media.ErrUploadFailed) {
				status, code = http.StatusBadRequest, CodeValidationFailed
			}
			WriteAPIError(w, status, code, "frame upload failed at file "+header.Filename)
			return
		}
		created = append(created, *frame)
		log.Printf("frames: uploaded %d/%d (%d%%) for film %s", i+1, len(files), (i+1)*100/len(files), filmID)
	}

	fh.Hub.Broadcast(realtime.Event{Type: realtime.EventFramesAdded, FilmID: filmID})
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"count":  len(created),
		"frames": created,
	})
}

func (fh *FrameHandler) uploadOneFrame(r *http.Request, film *models.Film, header *multipart.FileHeader, isExplicit bool) (*models.Frame, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	prepared, err := fh.Processor.Prepare(file)
	if err != nil {
		return nil, err
	}

	rawURL, err := fh.Uploader.Upload(r.Context(), prepared, media.UploadFilename(), fh.Cfg.FrameFolder)
	if err != nil {
		return nil, err
	}

	frame := &models.Frame{
		FilmID:     film.ID,
		FilmName:   film.Name,
		ImageURL:   media.DeliveryURL(rawURL, fh.Cfg.DeliverySegment),
		IsExplicit: isExplicit,
	}
	if err := fh.FrameRepo.Create(frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// DeleteFrame removes a single frame; the owning film's counter is
// adjusted by the repository.
func (fh *FrameHandler) DeleteFrame(w http.ResponseWriter, r *http.Request) {
	frameID := chi.URLParam(r, "frame_id")

	frame, err := fh.FrameRepo.GetByID(frameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, CodeNotFound, "frame not found")
		} else {
			log.Printf("Error getting frame %s: %v", frameID, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to retrieve frame")
		}
		return
	}

	if err := fh.FrameRepo.Delete(frameID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, CodeNotFound, "frame not found")
		} else {
			log.Printf("Error deleting frame %s: %v", frameID, err)
			WriteAPIError(w, http.StatusInternalServerError, CodeStoreUnavailable, "failed to delete frame")
		}
		return
	}

	fh.Hub.Broadcast(realtime.Event{Type: realtime.EventFrameDeleted, FilmID: frame.FilmID, FrameID: frameID})
	w.WriteHeader(http.StatusNoContent)
}
