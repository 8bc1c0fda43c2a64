// Package recorder captures raw wire traffic for offline replay and
// diagnostics. It never feeds anything back into game state.
package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Frame is one recorded wire delivery.
type Frame struct {
	Seq uint64          `json:"seq"`
	At  int64           `json:"at_unix_ms"`
	Dir string          `json:"dir"` // "in" or "out"
	Raw json.RawMessage `json:"raw"`
}

const (
	DirIn  = "in"
	DirOut = "out"
)

// WireLog appends frames to one zstd-compressed JSONL file. Safe for use
// from the socket goroutines and the session loop at once.
type WireLog struct {
	path string

	mu    sync.Mutex
	f     *os.File
	enc   *zstd.Encoder
	w     *bufio.Writer
	seq   uint64
	bytes int64
}

func NewWireLog(path string) (*WireLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &WireLog{
		path: path,
		f:    f,
		enc:  enc,
		w:    bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (l *WireLog) Path() string { return l.path }

// Frames reports how many frames were written so far.
func (l *WireLog) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seq
}

// Bytes reports the uncompressed payload bytes written so far.
func (l *WireLog) Bytes() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bytes
}

func (l *WireLog) Write(dir string, raw []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return nil
	}
	l.seq++
	fr := Frame{
		Seq: l.seq,
		At:  time.Now().UnixMilli(),
		Dir: dir,
		Raw: append(json.RawMessage(nil), raw...),
	}
	b, err := json.Marshal(fr)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	l.bytes += int64(len(raw))
	return nil
}

func (l *WireLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var err1 error
	if l.w != nil {
		err1 = l.w.Flush()
		l.w = nil
	}
	if l.enc != nil {
		if err := l.enc.Close(); err1 == nil {
			err1 = err
		}
		l.enc = nil
	}
	if l.f != nil {
		if err := l.f.Close(); err1 == nil {
			err1 = err
		}
		l.f = nil
	}
	return err1
}

// ReadWireLog loads every frame from a recording, in write order.
func ReadWireLog(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var frames []Frame
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		var fr Frame
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, len(frames)+1, err)
		}
		frames = append(frames, fr)
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return frames, nil
}
