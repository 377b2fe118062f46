package memory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/recall/pkg/logging"
)

const summaryFileName = "summary.md"

var ErrNotFound = errors.New("memory: record not found")

// Store owns the record collection and the running summary. It is the only
// component permitted to mutate either; the reconciliation engine and the
// summarizer see snapshots and return decisions or text.
//
// Records live on disk as one front-matter markdown file per record plus a
// summary file, inside a directory that is a git repository. Every applied
// batch is followed by one checkpoint commit. When the git binary is missing
// the store degrades to in-memory operation: functionality continues for the
// session, without durable history.
type Store struct {
	mu      sync.Mutex
	dir     string
	repo    Checkpointer // nil when degraded to in-memory operation
	records []*Record    // creation order; deletions leave no gap reuse
	byID    map[string]*Record
	nextID  int
	summary string
	log     *logging.Logger
}

// ApplyResult reports how many records one decision batch changed.
type ApplyResult struct {
	Added   int
	Updated int
	Deleted int
}

// Total returns the number of records the batch changed.
func (r ApplyResult) Total() int {
	return r.Added + r.Updated + r.Deleted
}

// String renders the result as a checkpoint label fragment.
func (r ApplyResult) String() string {
	return fmt.Sprintf("%d added, %d updated, %d deleted", r.Added, r.Updated, r.Deleted)
}

// Open opens the store at dir, creating it if absent. If the git binary is
// unavailable the store comes up in-memory with a one-time warning; this is
// never an error.
func Open(dir string, log *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("memory: init store directory %s: %w", dir, err)
	}

	repo, err := NewGitRepo(dir)
	if err != nil {
		if log != nil {
			log.Warnf("persistence backend unavailable, memory store running in-memory only: %v", err)
		}
		fmt.Fprintln(os.Stderr, "warning: git not available, memories will not persist across sessions")
		repo = nil
	}

	if repo == nil {
		return OpenWithCheckpointer("", nil, log)
	}
	return OpenWithCheckpointer(dir, repo, log)
}

// OpenWithCheckpointer opens a store over an explicit directory and
// checkpoint backend. An empty dir (or nil repo) yields an in-memory store
// that never touches the file system.
func OpenWithCheckpointer(dir string, repo Checkpointer, log *logging.Logger) (*Store, error) {
	s := &Store{
		dir:  dir,
		repo: repo,
		byID: make(map[string]*Record),
		log:  log,
	}

	if dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("memory: init store directory %s: %w", dir, err)
		}
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// load reads existing records and the summary from disk. Corrupt or
// unreadable record files are skipped, not fatal.
func (s *Store) load() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("memory: list store directory %s: %w", s.dir, err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".md" || name == summaryFileName {
			continue
		}
		path := filepath.Join(s.dir, name)
		b, err := os.ReadFile(path)
		if err != nil {
			s.debugf("skipping unreadable record file %s: %v", path, err)
			continue
		}
		rec, err := ParseRecord(b)
		if err != nil {
			s.debugf("skipping corrupt record file %s: %v", path, err)
			continue
		}
		if err := rec.Meta.Validate(); err != nil {
			s.debugf("skipping invalid record file %s: %v", path, err)
			continue
		}
		s.records = append(s.records, rec)
		s.byID[rec.Meta.ID] = rec
	}

	// Enumeration order equals creation order; ids are assigned as
	// monotonically increasing ordinals, so numeric order is creation order.
	sort.Slice(s.records, func(i, j int) bool {
		a, _ := strconv.Atoi(s.records[i].Meta.ID)
		b, _ := strconv.Atoi(s.records[j].Meta.ID)
		return a < b
	})
	for _, rec := range s.records {
		if n, err := strconv.Atoi(rec.Meta.ID); err == nil && n >= s.nextID {
			s.nextID = n + 1
		}
	}

	if b, err := os.ReadFile(filepath.Join(s.dir, summaryFileName)); err == nil {
		s.summary = strings.TrimSpace(string(b))
	}
	return nil
}

// ListRecords returns the id+text snapshot of every record in creation order.
func (s *Store) ListRecords() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Snapshot, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, Snapshot{ID: rec.Meta.ID, Text: rec.Text})
	}
	return out
}

// Count returns the number of stored records.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Apply applies a validated decision batch in a single in-memory transaction:
// all ADDs first (id assignment), then UPDATEs, then DELETEs. The batch is
// re-checked against current state before any mutation, so a batch that was
// fully validated is never partially applied.
func (s *Store) Apply(decisions []Decision) (ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range decisions {
		if err := d.validateShape(); err != nil {
			return ApplyResult{}, err
		}
		if d.Action != ActionAdd {
			if _, ok := s.byID[d.ID]; !ok {
				return ApplyResult{}, fmt.Errorf("%w: %s references id %q", ErrNotFound, d.Action, d.ID)
			}
		}
	}

	var result ApplyResult
	now := time.Now().UTC()

	for _, d := range decisions {
		if d.Action != ActionAdd {
			continue
		}
		rec := &Record{
			Meta: RecordMeta{
				ID:        strconv.Itoa(s.nextID),
				CreatedAt: now,
				UpdatedAt: now,
				Revision:  1,
			},
			Text: strings.TrimSpace(d.Text),
		}
		s.nextID++ // ids are never reused, even after deletion
		s.records = append(s.records, rec)
		s.byID[rec.Meta.ID] = rec
		s.persistRecord(rec)
		result.Added++
	}

	for _, d := range decisions {
		if d.Action != ActionUpdate {
			continue
		}
		rec := s.byID[d.ID]
		rec.Text = strings.TrimSpace(d.Text)
		rec.Meta.UpdatedAt = now
		rec.Meta.Revision++
		s.persistRecord(rec)
		result.Updated++
	}

	for _, d := range decisions {
		if d.Action != ActionDelete {
			continue
		}
		rec := s.byID[d.ID]
		delete(s.byID, d.ID)
		for i, r := range s.records {
			if r == rec {
				s.records = append(s.records[:i], s.records[i+1:]...)
				break
			}
		}
		s.removeRecordFile(d.ID)
		result.Deleted++
	}

	return result, nil
}

// Summary returns the current running summary text.
func (s *Store) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// SetSummary replaces the running summary text.
func (s *Store) SetSummary(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summary = strings.TrimSpace(text)
	if s.dir == "" {
		return
	}
	path := filepath.Join(s.dir, summaryFileName)
	if err := atomicWrite(path, []byte(s.summary+"\n")); err != nil {
		s.errorf("failed to persist summary: %v", err)
	}
}

// Checkpoint durably persists current state with a descriptive label.
// It is a successful no-op when nothing changed since the last checkpoint,
// and when the store is running in-memory.
func (s *Store) Checkpoint(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil
	}
	committed, err := s.repo.CommitAll(message)
	if err != nil {
		return err
	}
	if committed {
		s.debugf("checkpoint: %s", message)
	}
	return nil
}

// History returns the labels of recent checkpoints, newest first.
func (s *Store) History(limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo == nil {
		return nil, nil
	}
	return s.repo.History(limit)
}

// Durable returns true if the store has a persistence backend.
func (s *Store) Durable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo != nil
}

// persistRecord writes a record file to disk. Write failures are logged and
// do not abort the in-memory transaction.
func (s *Store) persistRecord(rec *Record) {
	if s.dir == "" {
		return
	}
	b, err := SerializeRecord(rec)
	if err != nil {
		s.errorf("failed to serialize record %s: %v", rec.Meta.ID, err)
		return
	}
	path := filepath.Join(s.dir, rec.Meta.ID+".md")
	if err := atomicWrite(path, b); err != nil {
		s.errorf("failed to persist record %s: %v", rec.Meta.ID, err)
	}
}

// removeRecordFile deletes a record file from disk.
func (s *Store) removeRecordFile(id string) {
	if s.dir == "" {
		return
	}
	path := filepath.Join(s.dir, id+".md")
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.errorf("failed to remove record file %s: %v", path, err)
	}
}

// atomicWrite writes a file via a temporary sibling and rename.
func atomicWrite(path string, b []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return err
	}
	return nil
}

func (s *Store) debugf(format string, v ...interface{}) {
	if s.log != nil {
		s.log.Debugf(format, v...)
	}
}

func (s *Store) errorf(format string, v ...interface{}) {
	if s.log != nil {
		s.log.Errorf(format, v...)
	}
}
