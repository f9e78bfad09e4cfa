package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"sort"
	"testing"

	"gorm.io/gorm"

	"github.com/camden-git/framegallerybackend/config"
	"github.com/camden-git/framegallerybackend/media"
	"github.com/camden-git/framegallerybackend/models"
	"github.com/camden-git/framegallerybackend/realtime"
	"github.com/camden-git/framegallerybackend/repository"
)

type fakeFilmRepo struct {
	films   map[string]*models.Film
	nextID  int
	created []string
}

var _ repository.FilmRepositoryInterface = (*fakeFilmRepo)(nil)

func newFakeFilmRepo() *fakeFilmRepo {
	return &fakeFilmRepo{films: make(map[string]*models.Film)}
}

func (r *fakeFilmRepo) Create(film *models.Film) error {
	r.nextID++
	film.ID = fmt.Sprintf("film-%d", r.nextID)
	film.FrameCount = 0
	copied := *film
	r.films[film.ID] = &copied
	r.created = append(r.created, film.ID)
	return nil
}

func (r *fakeFilmRepo) ListAll(includeExplicit bool) ([]models.Film, error) {
	out := make([]models.Film, 0, len(r.films))
	for _, film := range r.films {
		if includeExplicit || !film.IsExplicit {
			out = append(out, *film)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt != out[j].UploadedAt {
			return out[i].UploadedAt > out[j].UploadedAt
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *fakeFilmRepo) GetByID(id string) (*models.Film, error) {
	film, ok := r.films[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *film
	return &copied, nil
}

func (r *fakeFilmRepo) Update(id string, input repository.UpdateFilmInput) error {
	film, ok := r.films[id]
	if !ok {
		return gorm.ErrRecordNotFound
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
	if input.IsExplicit != nil {
		film.IsExplicit = *input.IsExplicit
	}
	if input.Plot != nil {
		film.Plot = input.Plot
	}
	if input.Director != nil {
		film.Director = input.Director
	}
	return nil
}

func (r *fakeFilmRepo) Delete(id string) error {
	film, ok := r.films[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if film.FrameCount > 0 {
		return repository.ErrFilmHasFrames
	}
	delete(r.films, id)
	return nil
}

type fakeFrameRepo struct {
	frames []models.Frame
	nextID int
	films  *fakeFilmRepo
}

var _ repository.FrameRepositoryInterface = (*fakeFrameRepo)(nil)

func newFakeFrameRepo(films *fakeFilmRepo) *fakeFrameRepo {
	return &fakeFrameRepo{films: films}
}

func (r *fakeFrameRepo) Create(frame *models.Frame) error {
	r.nextID++
	frame.ID = fmt.Sprintf("frame-%d", r.nextID)
	if film, ok := r.films.films[frame.FilmID]; ok {
		frame.Order = film.FrameCount
		film.FrameCount++
	}
	r.frames = append(r.frames, *frame)
	return nil
}

func (r *fakeFrameRepo) GetByID(id string) (*models.Frame, error) {
	for i := range r.frames {
		if r.frames[i].ID == id {
			copied := r.frames[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFrameRepo) ListByFilm(filmID string, includeExplicit bool) ([]models.Frame, error) {
	var out []models.Frame
	for _, frame := range r.frames {
		if frame.FilmID == filmID && (includeExplicit || !frame.IsExplicit) {
			out = append(out, frame)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeFrameRepo) ListRecent(limit int, includeExplicit bool) ([]models.Frame, error) {
	var out []models.Frame
	for _, frame := range r.frames {
		if includeExplicit || !frame.IsExplicit {
			out = append(out, frame)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt > out[j].UploadedAt })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFrameRepo) Delete(id string) error {
	for i := range r.frames {
		if r.frames[i].ID == id {
			if film, ok := r.films.films[r.frames[i].FilmID]; ok && film.FrameCount > 0 {
				film.FrameCount--
			}
			r.frames = append(r.frames[:i], r.frames[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeFrameRepo) CountByFilm(filmID string) (int64, error) {
	var n int64
	for _, frame := range r.frames {
		if frame.FilmID == filmID {
			n++
		}
	}
	return n, nil
}

// fakeUploader records every upload and answers with a Cloudinary-shaped
// URL. failAfter, when positive, fails the Nth call and all later ones.
type fakeUploader struct {
	calls     int
	folders   []string
	failAfter int
}

var _ media.Uploader = (*fakeUploader)(nil)

func (u *fakeUploader) Upload(ctx context.Context, data io.Reader, filename, folder string) (string, error) {
	u.calls++
	if u.failAfter > 0 && u.calls >= u.failAfter {
		return "", fmt.Errorf("%w: status 500", media.ErrUploadFailed)
	}
	if _, err := io.Copy(io.Discard, data); err != nil {
		return "", err
	}
	u.folders = append(u.folders, folder)
	return fmt.Sprintf("https://res.example.com/image/upload/v1/%s/%s", folder, filename), nil
}

func handlerTestConfig() config.Config {
	return config.Config{
		PosterFolder:      "posters",
		FrameFolder:       "frames",
		DeliverySegment:   "q_auto,f_auto",
		RecentFramesLimit: 20,
	}
}

func newTestHub() *realtime.Hub {
	// broadcasts land in the hub's buffered channel; no Run loop needed
	return realtime.NewHub()
}

// tinyJPEG returns a decodable JPEG payload for upload tests.
func tinyJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

type multipartBody struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newMultipartBody() *multipartBody {
	b := &multipartBody{}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

func (b *multipartBody) field(t *testing.T, name, value string) *multipartBody {
	t.Helper()
	if err := b.writer.WriteField(name, value); err != nil {
		t.Fatalf("write field %s: %v", name, err)
	}
	return b
}

func (b *multipartBody) file(t *testing.T, field, filename string, data []byte) *multipartBody {
	t.Helper()
	part, err := b.writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file %s: %v", filename, err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file %s: %v", filename, err)
	}
	return b
}

func (b *multipartBody) close(t *testing.T) (io.Reader, string) {
	t.Helper()
	if err := b.writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &b.buf, b.writer.FormDataContentType()
}
