// Package runlog keeps an append-only JSONL audit of answered questions,
// one file per UTC day. Files past retention are gzipped. Nothing here is
// ever read back by the analyst.
package runlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"equity-analyst/internal/types"
)

const ext = ".jsonl"

type Entry struct {
	ID         string                  `json:"id"`
	Time       string                  `json:"time"`
	Origin     string                  `json:"origin"`
	Question   string                  `json:"question"`
	Parsed     types.ParsedIntent      `json:"parsed"`
	Answer     string                  `json:"answer"`
	Answered   bool                    `json:"answered"`
	Iterations int                     `json:"iterations"`
	Fallbacks  int                     `json:"fallbacks"`
	Metrics    map[string]types.Digest `json:"metrics,omitempty"`
}

// FromAnalysis builds an entry; origin says where the question came from
// (cli, http).
func FromAnalysis(origin, id string, a types.Analysis) Entry {
	return Entry{
		ID:         id,
		Origin:     origin,
		Question:   a.Question,
		Parsed:     a.Parsed,
		Answer:     a.Answer,
		Answered:   a.Answered,
		Iterations: a.Iterations,
		Fallbacks:  a.Fallbacks,
		Metrics:    a.Metrics,
	}
}

// Log writes entries under dir. A nil *Log discards everything.
type Log struct {
	dir           string
	retentionDays int
	now           func() time.Time
	mu            sync.Mutex
}

// New returns nil when dir is empty.
func New(dir string, retentionDays int) *Log {
	if dir == "" {
		return nil
	}
	return &Log{dir: dir, retentionDays: retentionDays, now: time.Now}
}

func (l *Log) path(t time.Time) string {
	return filepath.Join(l.dir, t.UTC().Format("2006-01-02")+ext)
}

// Append stamps e with the current time, and a fresh id when it has none,
// and writes it as one line. It returns the id used.
func (l *Log) Append(e Entry) (string, error) {
	if l == nil {
		return e.ID, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e.Time = now.UTC().Format(time.RFC3339)
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	p := l.path(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("runlog dir: %w", err)
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("runlog open: %w", err)
	}
	defer f.Close()

	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("runlog encode: %w", err)
	}
	if _, err := fmt.Fprintln(f, string(b)); err != nil {
		return "", fmt.Errorf("runlog write: %w", err)
	}
	return e.ID, nil
}

// CompressOlder gzips day files last modified before the retention window
// and removes the originals. It returns the number of files compressed.
func (l *Log) CompressOlder() (int, error) {
	if l == nil || l.retentionDays <= 0 {
		return 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().AddDate(0, 0, -l.retentionDays)
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	n := 0
	for _, d := range entries {
		if d.IsDir() || filepath.Ext(d.Name()) != ext {
			continue
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		p := filepath.Join(l.dir, d.Name())
		if _, err := os.Stat(p + ".gz"); err == nil {
			// already compressed on an earlier pass
			_ = os.Remove(p)
			continue
		}
		if err := gzipFile(p); err != nil {
			return n, fmt.Errorf("compress %s: %w", d.Name(), err)
		}
		n++
	}
	return n, nil
}

func gzipFile(p string) error {
	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(p+".gz", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(p + ".gz")
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(p)
}
