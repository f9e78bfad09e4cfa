package repository_test

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/camden-git/framegallerybackend/models"
	"github.com/camden-git/framegallerybackend/repository"
)

func seedFrame(t *testing.T, repo *repository.FrameRepository, filmID string, explicit bool) *models.Frame {
	t.Helper()
	frame := &models.Frame{
		FilmID:     filmID,
		ImageURL:   "https://host/image/upload/frame.jpg",
		IsExplicit: explicit,
	}
	if err := repo.Create(frame); err != nil {
		t.Fatalf("seed frame for film %s: %v", filmID, err)
	}
	return frame
}

func TestFrameRepository_Create_IncrementsFilmCount(t *testing.T) {
	db := newTestDB(t)
	filmRepo := repository.NewFilmRepository(db)
	frameRepo := repository.NewFrameRepository(db)

	film := seedFilm(t, filmRepo, "The Thing", false)

	first := seedFrame(t, frameRepo, film.ID, false)
	found, err := filmRepo.GetByID(film.ID)
	if err != nil {
		t.Fatalf("GetByID after first frame: %v", err)
	}
	if found.FrameCount != 1 {
		t.Fatalf("expected frame count 1 after first create, got %d", found.FrameCount)
	}

	second := seedFrame(t, frameRepo, film.ID, false)
	found, err = filmRepo.GetByID(film.ID)
	if err != nil {
		t.Fatalf("GetByID after second frame: %v", err)
	}
	if found.FrameCount != 2 {
		t.Fatalf("expected frame count 2 after second create, got %d", found.FrameCount)
	}

	// display order derives from the film's count at insert time
	if first.Order != 0 || second.Order != 1 {
		t.Fatalf("expected orders [0, 1], got [%d, %d]", first.Order, second.Order)
	}
	if first.FilmName != "The Thing" {
		t.Fatalf("expected film name copied onto frame, got %q", first.FilmName)
	}
	if first.UploadedAt == 0 {
		t.Fatal("expected server-assigned upload timestamp")
	}
}

func TestFrameRepository_Create_MissingFilmSkipsCounter(t *testing.T) {
	db := newTestDB(t)
	frameRepo := repository.NewFrameRepository(db)

	frame := &models.Frame{FilmID: "dangling", ImageURL: "https://host/image/upload/f.jpg", FilmName: "gone"}
	if err := frameRepo.Create(frame); err != nil {
		t.Fatalf("Create with dangling film reference: %v", err)
	}
	if frame.ID == "" {
		t.Fatal("expected frame id to be assigned")
	}

	count, err := frameRepo.CountByFilm("dangling")
	if err != nil {
		t.Fatalf("CountByFilm: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 frame row, got %d", count)
	}
}

func TestFrameRepository_Delete_DecrementsFilmCount(t *testing.T) {
	db := newTestDB(t)
	filmRepo := repository.NewFilmRepository(db)
	frameRepo := repository.NewFrameRepository(db)

	film := seedFilm(t, filmRepo, "Carrie", false)
	frame := seedFrame(t, frameRepo, film.ID, false)
	seedFrame(t, frameRepo, film.ID, false)

	if err := frameRepo.Delete(frame.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, err := filmRepo.GetByID(film.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.FrameCount != 1 {
		t.Fatalf("expected frame count 1 after delete, got %d", found.FrameCount)
	}

	if _, err := frameRepo.GetByID(frame.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected deleted frame to be gone, got %v", err)
	}
}

func TestFrameRepository_Delete_CountFlooredAtZero(t *testing.T) {
	db := newTestDB(t)
	filmRepo := repository.NewFilmRepository(db)
	frameRepo := repository.NewFrameRepository(db)

	film := seedFilm(t, filmRepo, "Scanners", false)
	frame := seedFrame(t, frameRepo, film.ID, false)

	// force the counter out of sync so the delete would go negative
	if err := db.Model(&models.Film{}).Where("id = ?", film.ID).UpdateColumn("frame_count", 0).Error; err != nil {
		t.Fatalf("force counter: %v", err)
	}

	if err := frameRepo.Delete(frame.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, err := filmRepo.GetByID(film.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if found.FrameCount != 0 {
		t.Fatalf("expected frame count floored at 0, got %d", found.FrameCount)
	}
}

func TestFrameRepository_Delete_NotFound(t *testing.T) {
	db := newTestDB(t)
	frameRepo := repository.NewFrameRepository(db)

	if err := frameRepo.Delete("missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestFrameRepository_ListByFilm_OrderAndFilter(t *testing.T) {
	db := newTestDB(t)
	filmRepo := repository.NewFilmRepository(db)
	frameRepo := repository.NewFrameRepository(db)

	film := seedFilm(t, filmRepo, "Videodrome", false)
	seedFrame(t, frameRepo, film.ID, false)
	seedFrame(t, frameRepo, film.ID, true)
	seedFrame(t, frameRepo, film.ID, false)

	visible, err := frameRepo.ListByFilm(film.ID, false)
	if err != nil {
		t.Fatalf("ListByFilm(false): %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible frames, got %d", len(visible))
	}
	if visible[0].Order != 0 || visible[1].Order != 2 {
		t.Fatalf("expected ascending orders [0, 2], got [%d, %d]", visible[0].Order, visible[1].Order)
	}

	all, err := frameRepo.ListByFilm(film.ID, true)
	if err != nil {
		t.Fatalf("ListByFilm(true): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all 3 frames, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Order <= all[i-1].Order {
			t.Fatalf("expected strictly ascending display order, got %d then %d", all[i-1].Order, all[i].Order)
		}
	}
}

func TestFrameRepository_ListRecent_FilterBeforeLimit(t *testing.T) {
	db := newTestDB(t)
	filmRepo := repository.NewFilmRepository(db)
	frameRepo := repository.NewFrameRepository(db)

	film := seedFilm(t, filmRepo, "Hellraiser", false)

	// four frames, the two newest explicit
	var frames []*models.Frame
	for i, explicit := range []bool{false, false, true, true} {
		f := seedFrame(t, frameRepo, film.ID, explicit)
		setUploadedAt(t, db, &models.Frame{}, f.ID, int64(100+i))
		frames = append(frames, f)
	}

	// the filter must run before the limit: asking for 2 visible frames
	// returns the 2 newest non-explicit ones, not an under-filled page
	visible, err := frameRepo.ListRecent(2, false)
	if err != nil {
		t.Fatalf("ListRecent(2, false): %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible frames, got %d", len(visible))
	}
	if visible[0].ID != frames[1].ID || visible[1].ID != frames[0].ID {
		t.Fatalf("expected the two non-explicit frames newest-first, got [%s, %s]", visible[0].ID, visible[1].ID)
	}

	all, err := frameRepo.ListRecent(3, true)
	if err != nil {
		t.Fatalf("ListRecent(3, true): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected limit of 3 frames, got %d", len(all))
	}
	if all[0].ID != frames[3].ID {
		t.Fatalf("expected newest frame first, got %s", all[0].ID)
	}
}

func TestFrameRepository_CountByFilm(t *testing.T) {
	db := newTestDB(t)
	filmRepo := repository.NewFilmRepository(db)
	frameRepo := repository.NewFrameRepository(db)

	film := seedFilm(t, filmRepo, "Phantasm", false)
	for i := 0; i < 3; i++ {
		seedFrame(t, frameRepo, film.ID, i%2 == 0)
	}

	count, err := frameRepo.CountByFilm(film.ID)
	if err != nil {
		t.Fatalf("CountByFilm: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 frames, got %d", count)
	}

	found, err := filmRepo.GetByID(film.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if int64(found.FrameCount) != count {
		t.Fatalf("denormalized count %d disagrees with live count %d", found.FrameCount, count)
	}
}

func TestUserRepository_CreateAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)

	user := &models.User{Username: "admin", IsAdmin: true}
	if err := user.SetPassword("correct horse battery staple"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := userRepo.Create(user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := userRepo.GetByUsername("admin")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if !found.CheckPassword("correct horse battery staple") {
		t.Fatal("expected password to verify")
	}
	if found.CheckPassword("wrong") {
		t.Fatal("expected wrong password to fail")
	}
	if !found.IsAdmin {
		t.Fatal("expected admin flag to persist")
	}

	count, err := userRepo.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestFrameRepository_OrdersNeverRenumbered(t *testing.T) {
	db := newTestDB(t)
	filmRepo := repository.NewFilmRepository(db)
	frameRepo := repository.NewFrameRepository(db)

	film := seedFilm(t, filmRepo, "Possession", false)
	var created []*models.Frame
	for i := 0; i < 3; i++ {
		created = append(created, seedFrame(t, frameRepo, film.ID, false))
	}

	// deleting the middle frame leaves a gap in display orders
	if err := frameRepo.Delete(created[1].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	remaining, err := frameRepo.ListByFilm(film.ID, true)
	if err != nil {
		t.Fatalf("ListByFilm: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(remaining))
	}
	got := fmt.Sprintf("%d,%d", remaining[0].Order, remaining[1].Order)
	if got != "0,2" {
		t.Fatalf("expected orders 0,2 (gap preserved), got %s", got)
	}

	// the next insert reuses the film's current count, keeping order monotonic enough for sorting
	next := seedFrame(t, frameRepo, film.ID, false)
	if next.Order != 2 {
		t.Fatalf("expected next order 2 (from count), got %d", next.Order)
	}
}
