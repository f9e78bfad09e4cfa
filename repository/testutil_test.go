package repository_test

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/framegallerybackend/database"
	"github.com/camden-git/framegallerybackend/models"
	"github.com/camden-git/framegallerybackend/repository"
)

// Verify the repositories satisfy their interfaces at compile time.
var (
	_ repository.FilmRepositoryInterface  = (*repository.FilmRepository)(nil)
	_ repository.FrameRepositoryInterface = (*repository.FrameRepository)(nil)
	_ repository.UserRepositoryInterface  = (*repository.UserRepository)(nil)
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedFilm(t *testing.T, repo *repository.FilmRepository, name string, explicit bool) *models.Film {
	t.Helper()

	film := &models.Film{
		Name:             name,
		LetterboxdLink:   "https://letterboxd.com/film/" + name,
		LetterboxdRating: 4.5,
		PosterURL:        "https://host/image/upload/q_auto,f_auto/" + name + ".jpg",
		IsExplicit:       explicit,
	}
	if err := repo.Create(film); err != nil {
		t.Fatalf("seed film %s: %v", name, err)
	}
	return film
}

// setUploadedAt pins a record's upload timestamp so ordering assertions
// are deterministic within a single test second.
func setUploadedAt(t *testing.T, db *gorm.DB, model interface{}, id string, ts int64) {
	t.Helper()
	if err := db.Model(model).Where("id = ?", id).UpdateColumn("uploaded_at", ts).Error; err != nil {
		t.Fatalf("set uploaded_at for %s: %v", id, err)
	}
}
