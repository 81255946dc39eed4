package catalog

import (
	"errors"
	"os"

	"github.com/cuemby/quill/pkg/bin"
	"github.com/cuemby/quill/pkg/dberrors"
)

// readBootFile returns the UID of the catalog's first table, or 0 if the
// boot file does not yet exist (an empty catalog).
func readBootFile(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, dberrors.Storage(dberrors.ErrFileCannotRW, "reading catalog boot file")
	}
	if len(data) != 8 {
		return 0, dberrors.Storage(dberrors.ErrBadXIDFile, "catalog boot file has wrong size")
	}
	return bin.BytesToUint64(data), nil
}

// writeBootFileAtomic persists uid as the catalog's first-table pointer
// via a temp file plus rename: a crash mid-write leaves either the old
// boot file or the new one, never a torn one.
func writeBootFileAtomic(path string, uid uint64) error {
	tmp := path + "_tmp"
	if err := os.WriteFile(tmp, bin.Uint64ToBytes(uid), 0o644); err != nil {
		return dberrors.Storage(dberrors.ErrFileCannotRW, "writing catalog boot temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return dberrors.Storage(dberrors.ErrFileCannotRW, "renaming catalog boot file")
	}
	return nil
}
