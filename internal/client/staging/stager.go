// Package staging validates a file picked for attachment and keeps it
// staged, together with a preview for images, until the form is sent or the
// file is removed.
package staging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dmitrijs2005/invoicekeeper/internal/client/models"
)

// MaxFileSize is the largest accepted file, 10 MiB.
const MaxFileSize int64 = 10 * 1024 * 1024

var allowedTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"application/pdf": true,
}

type Reason int

const (
	ReasonSize Reason = iota + 1
	ReasonType
)

// RejectionError explains why a candidate was not staged. Message is the
// text shown to the user.
type RejectionError struct {
	Reason  Reason
	Message string
}

func (e *RejectionError) Error() string { return e.Message }

var (
	errTooLarge = &RejectionError{Reason: ReasonSize, Message: "File size exceeds 10MB. Please choose a smaller file."}
	errBadType  = &RejectionError{Reason: ReasonType, Message: "Invalid file type. Please upload PNG, JPG, JPEG, or PDF files only."}
)

// Candidate is a file offered for staging. Open is only called to build an
// image preview.
type Candidate struct {
	Name      string
	SizeBytes int64
	MIMEType  string
	Open      func() (io.ReadCloser, error)
}

// CandidateFromPath describes a local file. The MIME type is sniffed from
// the content since a terminal has no declared type to go by.
func CandidateFromPath(path string) (Candidate, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Candidate{}, err
	}
	if fi.IsDir() {
		return Candidate{}, fmt.Errorf("%s is a directory", path)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("detect type of %s: %w", path, err)
	}

	return Candidate{
		Name:      filepath.Base(path),
		SizeBytes: fi.Size(),
		MIMEType:  baseType(mt.String()),
		Open:      func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func baseType(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// StagedFile is an accepted candidate.
type StagedFile struct {
	Name          string
	SizeBytes     int64
	FormattedSize string
	MIMEType      string

	done       chan struct{}
	previewURL string
	previewErr error
}

func (f *StagedFile) IsImage() bool {
	return strings.HasPrefix(f.MIMEType, "image/")
}

// Preview waits for the data URL of an image. PDFs have none and return
// "" at once.
func (f *StagedFile) Preview(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-f.done:
		return f.previewURL, f.previewErr
	}
}

// Attachment is the reference stored on an invoice draft.
func (f *StagedFile) Attachment() *models.Attachment {
	return &models.Attachment{Name: f.Name, SizeBytes: f.SizeBytes, MIMEType: f.MIMEType}
}

// Stager holds at most one staged file.
type Stager struct {
	mu      sync.Mutex
	current *StagedFile
}

func NewStager() *Stager {
	return &Stager{}
}

// Stage validates c and, when accepted, replaces whatever was staged. A
// rejected candidate leaves the current file in place. Size is checked
// before type.
func (s *Stager) Stage(c Candidate) (*StagedFile, error) {
	if c.SizeBytes > MaxFileSize {
		return nil, errTooLarge
	}
	mt := baseType(c.MIMEType)
	if !allowedTypes[mt] {
		return nil, errBadType
	}

	f := &StagedFile{
		Name:          c.Name,
		SizeBytes:     c.SizeBytes,
		FormattedSize: FormatFileSize(c.SizeBytes),
		MIMEType:      mt,
		done:          make(chan struct{}),
	}

	if f.IsImage() && c.Open != nil {
		go f.buildPreview(c.Open)
	} else {
		close(f.done)
	}

	s.mu.Lock()
	s.current = f
	s.mu.Unlock()

	return f, nil
}

// Remove drops the staged file, if any.
func (s *Stager) Remove() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the staged file or nil.
func (s *Stager) Current() *StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (f *StagedFile) buildPreview(open func() (io.ReadCloser, error)) {
	defer close(f.done)

	rc, err := open()
	if err != nil {
		f.previewErr = fmt.Errorf("open %s: %w", f.Name, err)
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxFileSize+1))
	if err != nil {
		f.previewErr = fmt.Errorf("read %s: %w", f.Name, err)
		return
	}

	f.previewURL = "data:" + f.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
