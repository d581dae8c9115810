package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/facebookgo/atomicfile"

	"cardbook/internal/common/errors"
)

const vdirExtension = ".vcf"

// VdirStore keeps one .vcf file per contact in a single directory, named
// after the contact's UID.
type VdirStore struct {
	dir string
}

// NewVdirStore opens the vdir at the given directory. The directory must
// exist.
func NewVdirStore(dir string) (*VdirStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.StorageError("vdir path does not exist: "+dir, err)
	}
	if !info.IsDir() {
		return nil, errors.StorageError("vdir path is not a directory: "+dir, nil)
	}
	return &VdirStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *VdirStore) Dir() string {
	return s.dir
}

func (s *VdirStore) path(uid string) string {
	return filepath.Join(s.dir, uid+vdirExtension)
}

// List reads every .vcf file in the directory.
func (s *VdirStore) List(ctx context.Context) ([]Entry, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, "*"+vdirExtension))
	if err != nil {
		return nil, errors.StorageError("failed to list vdir "+s.dir, err)
	}
	entries := make([]Entry, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.StorageError("failed to read "+file, err)
		}
		entries = append(entries, Entry{
			UID:      strings.TrimSuffix(filepath.Base(file), vdirExtension),
			Location: file,
			Data:     data,
		})
	}
	return entries, nil
}

// Get reads the file belonging to the given UID.
func (s *VdirStore) Get(ctx context.Context, uid string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	file := s.path(uid)
	data, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, errors.NotFoundError("contact " + uid)
		}
		return Entry{}, errors.StorageError("failed to read "+file, err)
	}
	return Entry{UID: uid, Location: file, Data: data}, nil
}

// Put writes the file for the given UID atomically, through a rename of a
// temporary file.
func (s *VdirStore) Put(ctx context.Context, uid string, data []byte, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file := s.path(uid)
	if !overwrite {
		if _, err := os.Stat(file); err == nil {
			return errors.StorageError("contact file already exists: "+file, nil)
		}
	}
	f, err := atomicfile.New(file, 0o644)
	if err != nil {
		return errors.StorageError("failed to create "+file, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Abort()
		return errors.StorageError("failed to write "+file, err)
	}
	if err := f.Close(); err != nil {
		return errors.StorageError("failed to write "+file, err)
	}
	return nil
}

// Delete removes the file belonging to the given UID.
func (s *VdirStore) Delete(ctx context.Context, uid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file := s.path(uid)
	if err := os.Remove(file); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFoundError("contact " + uid)
		}
		return errors.StorageError("failed to remove "+file, err)
	}
	return nil
}
