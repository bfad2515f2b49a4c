package workspace

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

func ensureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mover moves files. Its rename and remove steps are swappable so tests can
// simulate locked files.
type mover struct {
	rename func(oldpath, newpath string) error
	remove func(name string) error
}

var defaultMover = mover{rename: os.Rename, remove: os.Remove}

func moveFile(src, dst string) error {
	return defaultMover.move(src, dst)
}

// move renames src to dst, replacing dst. When a rename is impossible
// (different volumes) the file is copied and the source removed. An existing
// dst is set aside first and restored if the move fails.
func (m mover) move(src, dst string) error {
	if err := ensureDir(filepath.Dir(dst)); err != nil {
		return err
	}

	aside := ""
	if fileExists(dst) {
		aside = dst + ".prev"
		if err := os.Rename(dst, aside); err != nil {
			return err
		}
	}

	if err := m.place(src, dst); err != nil {
		if aside != "" {
			if rerr := os.Rename(aside, dst); rerr != nil {
				return errors.Join(err, rerr)
			}
		}
		return err
	}

	if aside != "" {
		_ = os.Remove(aside)
	}
	return nil
}

// place puts src at dst, which does not exist. On failure dst is left absent
// and src untouched.
func (m mover) place(src, dst string) error {
	err := m.rename(src, dst)
	if err == nil {
		return nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}
	if err := m.remove(src); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
