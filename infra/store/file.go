package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kilianp07/chargeplan/core/schedule"
)

// FileStore keeps one schedule in a JSON file. Every write replaces the file
// atomically, so readers only ever see complete schedules. Writers are not
// serialized: two concurrent read-modify-write cycles can lose an edit.
type FileStore struct {
	path string
	now  func() time.Time
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock overrides the clock used to decide which entries are old.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: path, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the file location of the store.
func (s *FileStore) Path() string { return s.path }

// Load reads the schedule file.
func (s *FileStore) Load() (schedule.Schedule, error) { return Load(s.path) }

// Write persists sch atomically.
func (s *FileStore) Write(sch schedule.Schedule) error { return AtomicWrite(s.path, sch) }

// ClearOldEntries finds every entry dated strictly before today. Today's
// entries are kept whatever their time of day. With simulate the schedule is
// returned unchanged; otherwise the entries are removed and the result is
// persisted.
func (s *FileStore) ClearOldEntries(sch schedule.Schedule, simulate bool) (schedule.Schedule, schedule.ClearResult, error) {
	today := schedule.DateOf(s.now())
	keys := sch.KeysBefore(today)
	res := schedule.ClearResult{Count: len(keys), Keys: keys}
	if res.Keys == nil {
		res.Keys = []schedule.Key{}
	}
	out := sch.Clone()
	if simulate {
		return out, res, nil
	}
	for _, k := range keys {
		delete(out, k)
	}
	if err := s.Write(out); err != nil {
		return sch, schedule.ClearResult{}, err
	}
	return out, res, nil
}

// Load reads and decodes the schedule at path. A missing file yields
// schedule.ErrNotFound and invalid content schedule.ErrParse.
func Load(path string) (schedule.Schedule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", schedule.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	sch, err := schedule.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sch, nil
}

// AtomicWrite encodes sch to a temporary file in the destination directory
// and renames it over path. On failure the temporary file is removed, the
// destination is left untouched and the error wraps schedule.ErrWrite.
func AtomicWrite(path string, sch schedule.Schedule) error {
	data, err := schedule.Encode(sch)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", schedule.ErrWrite, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory %s: %v", schedule.ErrWrite, dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", schedule.ErrWrite, err)
	}
	name := tmp.Name()
	fail := func(step string, err error) error {
		_ = os.Remove(name)
		return fmt.Errorf("%w: %s %s: %v", schedule.ErrWrite, step, path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		return fail("close", err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		return fail("chmod", err)
	}
	if err := os.Rename(name, path); err != nil {
		return fail("rename", err)
	}
	return nil
}
