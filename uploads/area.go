// Package uploads manages the per-owner asset area on local disk. Saves take a
// shared lock on the owner and wipes take an exclusive one, so a reset never
// removes a file whose submission is still in flight.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockDirName    = ".locks"
	lockRetryDelay = 25 * time.Millisecond
	// maxNameSuffix bounds the name_N candidates tried when a name is taken.
	maxNameSuffix = 1000
)

var (
	// ErrInvalidOwner is returned for owner identities that cannot name a directory.
	ErrInvalidOwner = errors.New("invalid owner")
	// ErrInvalidName is returned when a filename sanitizes to nothing.
	ErrInvalidName = errors.New("invalid file name")
)

// File describes one stored upload.
type File struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Area is the root of all owners' upload directories.
type Area struct {
	root string
}

// NewArea creates root if needed.
func NewArea(root string) (*Area, error) {
	if err := os.MkdirAll(filepath.Join(root, lockDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload area: %w", err)
	}
	return &Area{root: root}, nil
}

// Root returns the area's base directory.
func (a *Area) Root() string {
	return a.root
}

func (a *Area) ownerDir(owner string) (string, error) {
	if owner == "" || strings.HasPrefix(owner, ".") || strings.ContainsAny(owner, `/\`+"\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidOwner, owner)
	}
	return filepath.Join(a.root, owner), nil
}

func (a *Area) lock(owner string) *flock.Flock {
	return flock.New(filepath.Join(a.root, lockDirName, owner+".lock"))
}

// Save writes body under the sanitized name in owner's directory, then calls
// submit with the stored path while still holding the owner's shared lock.
// A name already on disk is never replaced; the upload is stored as name_1,
// name_2, ... instead, so a queued job keeps reading the file it was given.
// The stored name and path are returned. If submit fails the file is removed.
func (a *Area) Save(ctx context.Context, owner, name string, body io.Reader, submit func(path string) error) (string, string, error) {
	dir, err := a.ownerDir(owner)
	if err != nil {
		return "", "", err
	}
	safe := SecureFilename(name)
	if safe == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	lock := a.lock(owner)
	if _, err := lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return "", "", fmt.Errorf("failed to lock uploads for %s: %w", owner, err)
	}
	defer lock.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	stored, err := reserveName(dir, safe)
	if err != nil {
		return "", "", fmt.Errorf("failed to save %s: %w", safe, err)
	}
	path := filepath.Join(dir, stored)
	if err := writeAtomic(dir, path, body); err != nil {
		_ = os.Remove(path)
		return "", "", fmt.Errorf("failed to save %s: %w", stored, err)
	}

	if submit != nil {
		if err := submit(path); err != nil {
			_ = os.Remove(path)
			return "", "", err
		}
	}
	return stored, path, nil
}

// reserveName claims name in dir by creating it exclusively, falling back to
// name_1, name_2, ... while those are taken.
func reserveName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 0; i <= maxNameSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if err := f.Close(); err != nil {
			return "", err
		}
		return candidate, nil
	}
	return "", fmt.Errorf("no free name for %s", name)
}

func writeAtomic(dir, path string, body io.Reader) error {
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// List returns owner's stored uploads sorted by name.
func (a *Area) List(owner string) ([]File, error) {
	dir, err := a.ownerDir(owner)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []File{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, File{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Wipe removes owner's directory once no submission for owner is in flight.
func (a *Area) Wipe(ctx context.Context, owner string) error {
	dir, err := a.ownerDir(owner)
	if err != nil {
		return err
	}
	lock := a.lock(owner)
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("failed to lock uploads for %s: %w", owner, err)
	}
	defer lock.Unlock()

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to wipe uploads for %s: %w", owner, err)
	}
	log.Printf("🧹 Wiped uploads for %s", owner)
	return nil
}

// Sweep removes uploads last modified before cutoff, one owner at a time
// under that owner's exclusive lock. It returns how many files were removed.
func (a *Area) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	owners, err := os.ReadDir(a.root)
	if err != nil {
		return 0, fmt.Errorf("failed to read upload area: %w", err)
	}

	removed := 0
	for _, entry := range owners {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		n, err := a.sweepOwner(ctx, entry.Name(), cutoff)
		removed += n
		if err != nil {
			return removed, err
		}
	}
	return removed, nil
}

func (a *Area) sweepOwner(ctx context.Context, owner string, cutoff time.Time) (int, error) {
	lock := a.lock(owner)
	if _, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return 0, fmt.Errorf("failed to lock uploads for %s: %w", owner, err)
	}
	defer lock.Unlock()

	files, err := a.List(owner)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		if !f.ModTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.root, owner, f.Name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: janitor could not remove %s/%s: %v", owner, f.Name, err)
			continue
		}
		removed++
	}
	return removed, nil
}
