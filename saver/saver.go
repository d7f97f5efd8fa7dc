// SPDX-License-Identifier: GPL-2.0-or-later

// Package saver writes extracted artifacts below an output directory. A
// single Saver is shared by the chunk handlers running on different
// goroutines.
package saver

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Saver struct {
	root string

	mu      sync.Mutex
	created map[string]bool
}

// New returns a saver rooted at dir. Directories are created lazily on
// first save.
func New(dir string) *Saver {
	return &Saver{root: dir, created: make(map[string]bool)}
}

// Save writes data to <root>/<dirTag>/<name><ext>. The write goes through
// a uniquely named temporary file renamed into place, so concurrent saves
// of distinct files never observe partial contents.
func (s *Saver) Save(data []byte, dirTag, name, ext string) error {
	dir := filepath.Join(s.root, dirTag)
	if err := s.ensureDir(dir); err != nil {
		return err
	}

	tmp := filepath.Join(dir, "."+name+ext+"."+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "saving %s%s", name, ext)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name+ext)); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "saving %s%s", name, ext)
	}
	return nil
}

func (s *Saver) ensureDir(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.created[dir] {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	s.created[dir] = true
	return nil
}
