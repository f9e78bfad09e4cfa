package repository

import (
	"github.com/camden-git/framegallerybackend/models"
)

// FilmRepositoryInterface defines the methods for film data operations
type FilmRepositoryInterface interface {
	Create(film *models.Film) error
	ListAll(includeExplicit bool) ([]models.Film, error)
	GetByID(id string) (*models.Film, error)
	Update(id string, input UpdateFilmInput) error
	Delete(id string) error
}

// FrameRepositoryInterface defines the methods for frame data operations
type FrameRepositoryInterface interface {
	Create(frame *models.Frame) error
	GetByID(id string) (*models.Frame, error)
	ListByFilm(filmID string, includeExplicit bool) ([]models.Frame, error)
	ListRecent(limit int, includeExplicit bool) ([]models.Frame, error)
	Delete(id string) error
	CountByFilm(filmID string) (int64, error)
}

// UserRepositoryInterface defines the methods for user data operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Count() (int64, error)
}
