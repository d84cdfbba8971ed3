package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var ErrUnsupportedFileType = errors.New("only PDF and DOCX files are allowed")

// ResumeTypes are the content types accepted for resumes.
var ResumeTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ObjectStore keeps uploaded files and hands back their public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error)
}

type ResumeUploader struct {
	Store ObjectStore
	Now   func() time.Time
}

func NewResumeUploader(store ObjectStore) *ResumeUploader {
	return &ResumeUploader{Store: store, Now: time.Now}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Upload checks the file content is a PDF or DOCX and stores it as
// "resume-<unix millis>-<name>". The declared type of the upload is ignored;
// the bytes decide.
func (u *ResumeUploader) Upload(ctx context.Context, filename string, body io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(body)
	if err != nil {
		return "", fmt.Errorf("detecting file type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), ResumeTypes...) {
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedFileType, mtype.String())
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	key := fmt.Sprintf("resume-%d-%s", u.Now().UnixMilli(), cleanName(filename))
	url, err := u.Store.Put(ctx, key, mtype.String(), body)
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return url, nil
}

func cleanName(filename string) string {
	name := unsafeName.ReplaceAllString(path.Base(strings.ReplaceAll(filename, `\`, "/")), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "resume"
	}
	return name
}
