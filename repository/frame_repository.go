package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/framegallerybackend/models"
)

// FrameRepository handles database operations for Frame entities. Frame
// writes and the owning film's denormalized frame count are adjusted
// inside a single transaction so the counter cannot drift under a
// partial failure.
type FrameRepository struct {
	DB *gorm.DB
}

// NewFrameRepository creates a new instance of FrameRepository
func NewFrameRepository(db *gorm.DB) *FrameRepository {
	return &FrameRepository{DB: db}
}

// Create writes a frame and increments the owning film's frame count in
// one transaction. The frame's display order is assigned from the film's
// current count, so orders are monotonic per film and never renumbered.
// A frame referencing a missing film is still written with its caller
// order; only the counter update is skipped.
func (r *FrameRepository) Create(frame *models.Frame) error {
	frame.ID = uuid.NewString()
	frame.UploadedAt = time.Now().Unix()

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var film models.Film
		err := tx.Where("id = ?", frame.FilmID).First(&film).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// dangling film reference: keep the frame, skip the counter
				return tx.Create(frame).Error
			}
			return err
		}

		frame.Order = film.FrameCount
		if frame.FilmName == "" {
			frame.FilmName = film.Name
		}

		if err := tx.Create(frame).Error; err != nil {
			return err
		}

		return tx.Model(&models.Film{}).Where("id = ?", frame.FilmID).
			UpdateColumn("frame_count", gorm.Expr("frame_count + 1")).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create frame for film %s: %w", frame.FilmID, err)
	}
	return nil
}

// GetByID retrieves a frame by its id
func (r *FrameRepository) GetByID(id string) (*models.Frame, error) {
	var frame models.Frame
	err := r.DB.Where("id = ?", id).First(&frame).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get frame by ID %s: %w", id, err)
	}
	return &frame, nil
}

// ListByFilm retrieves a film's frames ascending by display order, with
// id as a stable tie-break. Explicit frames are excluded in the query
// when includeExplicit is false.
func (r *FrameRepository) ListByFilm(filmID string, includeExplicit bool) ([]models.Frame, error) {
	var frames []models.Frame

	query := r.DB.Where("film_id = ?", filmID).Order("display_order ASC, id ASC")
	if !includeExplicit {
		query = query.Where("is_explicit = ?", false)
	}

	err := query.Find(&frames).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list frames for film %s: %w", filmID, err)
	}
	return frames, nil
}

// ListRecent retrieves frames across all films, newest upload first. The
// explicit filter is applied before the limit, so asking for N visible
// frames returns N whenever N exist.
func (r *FrameRepository) ListRecent(limit int, includeExplicit bool) ([]models.Frame, error) {
	var frames []models.Frame

	query := r.DB.Order("uploaded_at DESC, id DESC").Limit(limit)
	if !includeExplicit {
		query = query.Where("is_explicit = ?", false)
	}

	err := query.Find(&frames).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent frames: %w", err)
	}
	return frames, nil
}

// Delete removes a frame and decrements the owning film's frame count,
// floored at 0, in one transaction.
func (r *FrameRepository) Delete(id string) error {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var frame models.Frame
		if err := tx.Where("id = ?", id).First(&frame).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ?", id).Delete(&models.Frame{}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Film{}).Where("id = ?", frame.FilmID).
			UpdateColumn("frame_count", gorm.Expr("MAX(frame_count - 1, 0)")).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete frame ID %s: %w", id, err)
	}
	return nil
}

// CountByFilm returns the live number of frame rows referencing a film,
// independent of the denormalized counter.
func (r *FrameRepository) CountByFilm(filmID string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.Frame{}).Where("film_id = ?", filmID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count frames for film %s: %w", filmID, err)
	}
	return count, nil
}
