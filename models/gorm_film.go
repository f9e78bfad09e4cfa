package models

import "gorm.io/gorm"

// Film represents one movie entry in the database using GORM.
// It corresponds to the 'films' table.
type Film struct {
	ID               string         `gorm:"primaryKey" json:"id"` // opaque id assigned by the repository
	Name             string         `gorm:"not null" json:"name"`
	LetterboxdLink   string         `gorm:"not null" json:"letterboxd_link"`
	LetterboxdRating float64        `gorm:"not null" json:"letterboxd_rating"`
	PosterURL        string         `gorm:"not null" json:"poster_url"`
	FrameCount       int            `gorm:"not null;default:0" json:"frame_count"` // denormalized, kept in sync on frame create/delete
	IsExplicit       bool           `gorm:"not null;default:false;index" json:"is_explicit"`
	UploadedAt       int64          `gorm:"not null;index" json:"uploaded_at"` // Unix timestamp, default listing order
	ReleaseYear      *int           `gorm:"" json:"release_year,omitempty"`    // Nullable
	Director         *string        `gorm:"" json:"director,omitempty"`        // Nullable
	Genre            []string       `gorm:"serializer:json" json:"genre,omitempty"`
	Cast             []string       `gorm:"serializer:json" json:"cast,omitempty"`
	Plot             *string        `gorm:"" json:"plot,omitempty"`         // Nullable
	AdminName        *string        `gorm:"" json:"admin_name,omitempty"`   // Nullable
	AdminReview      *string        `gorm:"" json:"admin_review,omitempty"` // Nullable
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Film) TableName() string {
	return "films"
}
