package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/framegallerybackend/models"
)

// FilmRepository handles database operations for Film entities
type FilmRepository struct {
	DB *gorm.DB
}

// NewFilmRepository creates a new instance of FilmRepository
func NewFilmRepository(db *gorm.DB) *FilmRepository {
	return &FilmRepository{DB: db}
}

// Create creates a new film record. The id, upload timestamp and frame
// count are assigned here regardless of caller-supplied values.
func (r *FilmRepository) Create(film *models.Film) error {
	film.ID = uuid.NewString()
	film.UploadedAt = time.Now().Unix()
	film.FrameCount = 0

	err := r.DB.Create(film).Error
	if err != nil {
		return fmt.Errorf("failed to create film %s: %w", film.Name, err)
	}
	return nil
}

// ListAll retrieves films ordered newest-first by upload timestamp, with
// id as a stable tie-break. When includeExplicit is false the query
// itself excludes explicit films; when true no filter is applied.
func (r *FilmRepository) ListAll(includeExplicit bool) ([]models.Film, error) {
	var films []models.Film

	query := r.DB.Order("uploaded_at DESC, id DESC")
	if !includeExplicit {
		query = query.Where("is_explicit = ?", false)
	}

	err := query.Find(&films).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	return films, nil
}

// GetByID retrieves a film by its id. A missing id yields
// gorm.ErrRecordNotFound, which callers treat as an expected result.
func (r *FilmRepository) GetByID(id string) (*models.Film, error) {
	var film models.Film
	err := r.DB.Where("id = ?", id).First(&film).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get film by ID %s: %w", id, err)
	}
	return &film, nil
}

// UpdateFilmInput carries a partial film update. Nil fields are left
// unchanged; non-nil fields are written even when they hold the zero
// value, so an explicit empty string, empty list or false clears the
// stored value.
type UpdateFilmInput struct {
	Name             *string
	LetterboxdLink   *string
	LetterboxdRating *float64
	PosterURL        *string
	IsExplicit       *bool
	ReleaseYear      *int
	Director         *string
	Genre            *[]string
	Cast             *[]string
	Plot             *string
	AdminName        *string
	AdminReview      *string
}

// Update merges the provided fields into an existing film. The frame
// count and upload timestamp are never touched here.
func (r *FilmRepository) Update(id string, input UpdateFilmInput) error {
	film, err := r.GetByID(id)
	if err != nil {
		return err
	}

	if input.Name != nil {
		film.Name = *input.Name
	}
	if input.LetterboxdLink != nil {
		film.LetterboxdLink = *input.LetterboxdLink
	}
	if input.LetterboxdRating != nil {
		film.LetterboxdRating = *input.LetterboxdRating
	}
	if input.PosterURL != nil {
		film.PosterURL = *input.PosterURL
	}
	if input.IsExplicit != nil {
		film.IsExplicit = *input.IsExplicit
	}
	if input.ReleaseYear != nil {
		if *input.ReleaseYear == 0 {
			film.ReleaseYear = nil
		} else {
			film.ReleaseYear = input.ReleaseYear
		}
	}
	if input.Director != nil {
		film.Director = input.Director
	}
	if input.Genre != nil {
		film.Genre = *input.Genre
	}
	if input.Cast != nil {
		film.Cast = *input.Cast
	}
	if input.Plot != nil {
		film.Plot = input.Plot
	}
	if input.AdminName != nil {
		film.AdminName = input.AdminName
	}
	if input.AdminReview != nil {
		film.AdminReview = input.AdminReview
	}

	if err := r.DB.Save(film).Error; err != nil {
		return fmt.Errorf("failed to update film ID %s: %w", id, err)
	}
	return nil
}

// Delete removes a film by its id. The delete is rejected with
// ErrFilmHasFrames while frame records still reference the film; callers
// must delete the frames first. Performs a soft delete because
// models.Film has gorm.DeletedAt.
func (r *FilmRepository) Delete(id string) error {
	var frameCount int64
	if err := r.DB.Model(&models.Frame{}).Where("film_id = ?", id).Count(&frameCount).Error; err != nil {
		return fmt.Errorf("failed to count frames for film ID %s: %w", id, err)
	}
	if frameCount > 0 {
		return ErrFilmHasFrames
	}

	result := r.DB.Where("id = ?", id).Delete(&models.Film{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete film ID %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
