// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const (
	// UploadURLTTL is how long a signed upload URL stays usable.
	UploadURLTTL = 15 * time.Minute

	// DefaultMaxSize caps a single uploaded object.
	DefaultMaxSize int64 = 25 * humanize.MiByte

	// ObjectPrefix is the directory uploaded photos are placed under.
	ObjectPrefix = "photos"

	uploadRoute  = "/api/uploads/"
	displayRoute = "/files/"
)

var (
	ErrNotFound         = errors.New("object not found")
	ErrInvalidPath      = errors.New("invalid object path")
	ErrInvalidSignature = errors.New("invalid upload signature")
	ErrURLExpired       = errors.New("upload URL expired")
	ErrTooLarge         = errors.New("object too large")
)

// Store keeps uploaded objects on local disk under root.
type Store struct {
	root    string
	secret  []byte
	maxSize int64
}

// New creates the root directory if needed.
func New(root, secret string, maxSize int64) (*Store, error) {
	if secret == "" {
		return nil, errors.New("storage secret is required")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{root: root, secret: []byte(secret), maxSize: maxSize}, nil
}

// MaxSize returns the per-object size limit in bytes.
func (s *Store) MaxSize() int64 {
	return s.maxSize
}

// NewObjectPath allocates a fresh object path, keeping the extension of the
// client's file name.
func NewObjectPath(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return ObjectPrefix + "/" + uuid.NewString() + ext
}

// SignUpload returns the relative upload URL for objectPath and its expiry.
func (s *Store) SignUpload(objectPath string, now time.Time) (string, time.Time, error) {
	clean, err := cleanPath(objectPath)
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := now.Add(UploadURLTTL)
	expires := strconv.FormatInt(expiresAt.Unix(), 10)

	q := url.Values{}
	q.Set("expires", expires)
	q.Set("signature", s.sign(clean, expires))
	return uploadRoute + clean + "?" + q.Encode(), expiresAt, nil
}

// VerifyUpload checks a signature produced by SignUpload.
func (s *Store) VerifyUpload(objectPath, expires, signature string, now time.Time) error {
	clean, err := cleanPath(objectPath)
	if err != nil {
		return err
	}

	if !hmac.Equal([]byte(signature), []byte(s.sign(clean, expires))) {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	if !now.Before(time.Unix(unix, 0)) {
		return ErrURLExpired
	}
	return nil
}

func (s *Store) sign(objectPath, expires string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte("PUT\n" + objectPath + "\n" + expires))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Put writes the object from r. Bodies larger than MaxSize are rejected and
// nothing is kept.
func (s *Store) Put(objectPath string, r io.Reader) (int64, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, s.maxSize+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to write object: %w", err)
	}
	if n > s.maxSize {
		return 0, fmt.Errorf("%w: limit is %s", ErrTooLarge, humanize.IBytes(uint64(s.maxSize)))
	}

	if err := os.Rename(tmp.Name(), full); err != nil {
		return 0, fmt.Errorf("failed to store object: %w", err)
	}

	slog.Info("object stored", "path", objectPath, "size", humanize.IBytes(uint64(n)))
	return n, nil
}

// Exists reports whether objectPath has been uploaded.
func (s *Store) Exists(objectPath string) (bool, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(full)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !info.IsDir(), nil
}

// Open returns the stored object. The caller closes it.
func (s *Store) Open(objectPath string) (*os.File, os.FileInfo, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return nil, nil, err
	}

	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	return f, info, nil
}

// DisplayPath is the stable path an uploaded object is served from.
func DisplayPath(objectPath string) string {
	return displayRoute + strings.TrimPrefix(path.Clean("/"+objectPath), "/")
}

// ObjectPathFromURL accepts an object path, an upload URL or a display path
// and returns the bare object path.
func ObjectPathFromURL(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		raw = u.Path
	}
	raw = strings.TrimPrefix(raw, uploadRoute)
	raw = strings.TrimPrefix(raw, displayRoute)
	return strings.TrimPrefix(raw, "/")
}

func (s *Store) resolve(objectPath string) (string, error) {
	clean, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func cleanPath(objectPath string) (string, error) {
	if objectPath == "" || strings.Contains(objectPath, `\`) {
		return "", ErrInvalidPath
	}
	clean := path.Clean(objectPath)
	if clean == "." || strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(clean, "/") {
		if strings.HasPrefix(part, ".") {
			return "", ErrInvalidPath
		}
	}
	return clean, nil
}
