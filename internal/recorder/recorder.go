package recorder

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Recorder ties one session's wire log to the sqlite index. All methods are
// called from the session loop; no locking needed.
type Recorder struct {
	ID string

	log *WireLog
	idx *Index
}

// New opens a recording under dir: <dir>/<uuid>.jsonl.zst plus the shared
// <dir>/index.db row.
func New(dir, serverURL string) (*Recorder, error) {
	id := uuid.NewString()
	path := filepath.Join(dir, id+".jsonl.zst")

	wl, err := NewWireLog(path)
	if err != nil {
		return nil, fmt.Errorf("wire log: %w", err)
	}
	ix, err := OpenIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		_ = wl.Close()
		return nil, fmt.Errorf("index: %w", err)
	}
	if err := ix.Start(id, serverURL, path, time.Now()); err != nil {
		_ = wl.Close()
		_ = ix.Close()
		return nil, fmt.Errorf("index start: %w", err)
	}
	return &Recorder{ID: id, log: wl, idx: ix}, nil
}

func (r *Recorder) Path() string { return r.log.Path() }

// Record appends one frame; errors are returned for the caller to log, a
// failed write never interrupts the session.
func (r *Recorder) Record(dir string, raw []byte) error {
	return r.log.Write(dir, raw)
}

// Close finalizes the log and the index row. Idempotent.
func (r *Recorder) Close() error {
	if r.log == nil {
		return nil
	}
	frames, bytes := r.log.Frames(), r.log.Bytes()
	err := r.log.Close()
	r.log = nil

	if ferr := r.idx.Finish(r.ID, frames, bytes, time.Now()); err == nil {
		err = ferr
	}
	if cerr := r.idx.Close(); err == nil {
		err = cerr
	}
	return err
}
