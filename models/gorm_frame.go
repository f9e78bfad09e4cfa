package models

// Frame represents one image belonging to a Film.
// It corresponds to the 'frames' table.
type Frame struct {
	ID         string `gorm:"primaryKey" json:"id"`
	FilmID     string `gorm:"not null;index" json:"film_id"`   // reference by id copy, no FK constraint
	FilmName   string `gorm:"not null" json:"film_name"`       // copied at creation, not synced on film renames
	ImageURL   string `gorm:"not null" json:"image_url"`
	IsExplicit bool   `gorm:"not null;default:false" json:"is_explicit"`
	Order      int    `gorm:"column:display_order;not null" json:"order"` // assigned from the film's frame count at insert, never renumbered
	UploadedAt int64  `gorm:"not null;index" json:"uploaded_at"`          // Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (Frame) TableName() string {
	return "frames"
}
