package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrUploadFailed indicates the image host rejected an upload or was
// unreachable. No record referencing the image is created after it.
var ErrUploadFailed = errors.New("image upload failed")

const errorBodyLimit = 512

// Uploader converts a local file into a durable, publicly fetchable URL
// before a record referencing it is created.
type Uploader interface {
	Upload(ctx context.Context, data io.Reader, filename, folder string) (string, error)
}

// CloudinaryUploader posts files to a Cloudinary-style unsigned upload
// endpoint: multipart form data with the file, a fixed upload preset and
// a target folder, answered with JSON carrying a secure URL.
type CloudinaryUploader struct {
	Endpoint     string
	UploadPreset string
	Client       *http.Client
}

func NewCloudinaryUploader(endpoint, uploadPreset string) *CloudinaryUploader {
	return &CloudinaryUploader{
		Endpoint:     endpoint,
		UploadPreset: uploadPreset,
		Client:       &http.Client{Timeout: 60 * time.Second},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends one file and returns the canonical URL the host assigned.
// Any non-2xx response fails with ErrUploadFailed; a truncated slice of
// the host's error body is carried in the error message.
func (u *CloudinaryUploader) Upload(ctx context.Context, data io.Reader, filename, folder string) (string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, data); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("upload_preset", u.UploadPreset); err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("folder", folder); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.Endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		detail := strings.TrimSpace(string(body))
		log.Printf("media: upload of %s rejected with status %d: %s", filename, resp.StatusCode, detail)
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, detail)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: failed to decode upload response: %v", ErrUploadFailed, err)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("%w: upload response missing secure_url", ErrUploadFailed)
	}
	return parsed.SecureURL, nil
}
