package service

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/beyondbeauty/press/config"
	"github.com/beyondbeauty/press/logger"
	"github.com/beyondbeauty/press/util/common"
	"github.com/beyondbeauty/press/util/storage"
)

const (
	MaxAssetSize = 5 << 20
	AssetURLBase = "/uploads/"
)

var allowedImageTypes = []struct {
	mime string
	ext  string
}{
	{"image/jpeg", ".jpg"},
	{"image/png", ".png"},
	{"image/gif", ".gif"},
	{"image/webp", ".webp"},
}

// BlobStore is the storage backend behind the AssetService.
type BlobStore interface {
	Save(name string, data []byte) error
	Remove(name string) error
	Exists(name string) bool
	List() ([]string, error)
}

// Upload is an image file received with an article submission.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// AssetService owns the lifecycle of article images: store, swap, remove.
// References it hands out have the form AssetURLBase + name.
type AssetService struct {
	store   BlobStore
	pending sync.WaitGroup
}

func NewAssetService(store BlobStore) *AssetService {
	return &AssetService{store: store}
}

// NewDiskAssetService stores images in the configured upload folder.
func NewDiskAssetService() (*AssetService, error) {
	store, err := storage.NewDiskStore(config.GetUploadFolder())
	if err != nil {
		return nil, err
	}
	return NewAssetService(store), nil
}

// Attach validates and stores u, returning its reference.
func (s *AssetService) Attach(u *Upload) (string, error) {
	if u == nil || u.Content == nil {
		return "", &common.InvalidAssetError{Reason: "no file"}
	}
	if u.Size > MaxAssetSize {
		return "", &common.InvalidAssetError{Reason: "file exceeds " + common.FormatBytes(MaxAssetSize), TooLarge: true}
	}

	data, err := io.ReadAll(io.LimitReader(u.Content, MaxAssetSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > MaxAssetSize {
		return "", &common.InvalidAssetError{Reason: "file exceeds " + common.FormatBytes(MaxAssetSize), TooLarge: true}
	}
	if len(data) == 0 {
		return "", &common.InvalidAssetError{Reason: "empty file"}
	}

	detected := mimetype.Detect(data)
	ext := ""
	for _, t := range allowedImageTypes {
		if detected.Is(t.mime) {
			ext = t.ext
			break
		}
	}
	if ext == "" {
		return "", &common.InvalidAssetError{Reason: "unsupported type " + detected.String()}
	}

	name := uuid.NewString() + ext
	if err := s.store.Save(name, data); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	logger.Debugf("stored asset %s (%s, %d bytes, from %q)", name, detected.String(), len(data), u.Filename)
	return AssetURLBase + name, nil
}

// Replace attaches u and, only when that succeeds, retires oldRef. The old
// asset is gone before any record is rewritten, so ArticleService.Revise
// does not use it: there the old image is retired after the update commits.
func (s *AssetService) Replace(oldRef string, u *Upload) (string, error) {
	ref, err := s.Attach(u)
	if err != nil {
		return "", err
	}
	if oldRef != "" && oldRef != ref {
		s.Retire(oldRef)
	}
	return ref, nil
}

// Detach deletes the referenced asset. Unknown or foreign references are
// not errors.
func (s *AssetService) Detach(ref string) error {
	name, ok := assetName(ref)
	if !ok {
		logger.Debugf("detach: %q is not a stored asset, nothing to delete", ref)
		return nil
	}
	return s.store.Remove(name)
}

// Retire deletes ref in the background. Failures are logged, never returned.
func (s *AssetService) Retire(ref string) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer common.Recover("asset cleanup")
		if err := s.Detach(ref); err != nil {
			logger.Warningf("asset cleanup of %s failed: %v", ref, err)
		}
	}()
}

// Wait blocks until every retirement started so far has finished.
func (s *AssetService) Wait() {
	s.pending.Wait()
}

// Exists reports whether ref names an asset currently held by the store.
func (s *AssetService) Exists(ref string) bool {
	name, ok := assetName(ref)
	return ok && s.store.Exists(name)
}

// Orphans lists stored asset names that none of the referenced refs point to.
func (s *AssetService) Orphans(referenced []string) ([]string, error) {
	keep := make(map[string]struct{}, len(referenced))
	for _, ref := range referenced {
		if name, ok := assetName(ref); ok {
			keep[name] = struct{}{}
		}
	}

	names, err := s.store.List()
	if err != nil {
		return nil, err
	}
	orphans := make([]string, 0)
	for _, name := range names {
		if _, ok := keep[name]; !ok {
			orphans = append(orphans, name)
		}
	}
	return orphans, nil
}

// Sweep removes the orphans of referenced and returns how many were deleted.
func (s *AssetService) Sweep(referenced []string) (int, error) {
	orphans, err := s.Orphans(referenced)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, name := range orphans {
		if err := s.store.Remove(name); err != nil {
			logger.Warningf("sweep: remove %s: %v", name, err)
			continue
		}
		removed++
	}
	return removed, nil
}

func assetName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, AssetURLBase) {
		return "", false
	}
	name := strings.TrimPrefix(ref, AssetURLBase)
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", false
	}
	return name, true
}
