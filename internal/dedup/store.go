// Package dedup persists the history of produced questions as a JSON hash index.
package dedup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"quiz-poll/internal/domain"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DateLayout is the timestamp format of date_added in the history file.
const DateLayout = "2006-01-02 15:04:05"

// historyDocument is the on-disk layout of the question history.
type historyDocument struct {
	Questions []historyEntry `json:"questions"`
}

type historyEntry struct {
	Hash      string `json:"hash"`
	Question  string `json:"question"`
	DateAdded string `json:"date_added"`
}

// FileStore implements domain.QuestionHistory on top of a single JSON file.
// Every call re-reads the file; there is no in-memory cache between calls.
// Record is an unsynchronised read-modify-write: wrap it in a LockedStore
// when more than one producer shares the file.
type FileStore struct {
	fs     afero.Fs
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock overrides the time source used for date_added.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore creates a store backed by path on the given filesystem.
func NewFileStore(fs afero.Fs, path string, logger *zap.Logger, opts ...Option) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore{
		fs:     fs,
		path:   path,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the history file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the history. A missing, unreadable or corrupt file is treated as
// empty history and never reported as an error.
func (s *FileStore) Load(ctx context.Context) (*domain.DedupSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Failed to read question history, starting with empty history",
				zap.String("path", s.path),
				zap.Error(err),
			)
		}
		return &domain.DedupSnapshot{Records: []domain.DedupRecord{}}, nil
	}

	var doc historyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("Question history is corrupt, starting with empty history",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return &domain.DedupSnapshot{Records: []domain.DedupRecord{}}, nil
	}

	return toSnapshot(doc, s.logger), nil
}

// Record appends prompt to the history if its hash is not present yet and
// persists the whole document. Duplicates leave the file untouched.
func (s *FileStore) Record(ctx context.Context, prompt string) (bool, error) {
	snapshot, err := s.Load(ctx)
	if err != nil {
		return false, err
	}

	if !snapshot.Append(prompt, s.now()) {
		s.logger.Info("Question already in history",
			zap.String("hash", domain.HashPrompt(prompt)),
			zap.Int("history_size", snapshot.Len()),
		)
		return false, nil
	}

	if err := s.save(snapshot); err != nil {
		return false, domain.NewDedupPersistError(s.path, err)
	}

	s.logger.Debug("Recorded question in history",
		zap.String("hash", domain.HashPrompt(prompt)),
		zap.Int("history_size", snapshot.Len()),
	)
	return true, nil
}

// save writes the document to a temporary file and renames it into place.
func (s *FileStore) save(snapshot *domain.DedupSnapshot) error {
	data, err := json.MarshalIndent(toDocument(snapshot), "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return nil
}

func toSnapshot(doc historyDocument, logger *zap.Logger) *domain.DedupSnapshot {
	records := make([]domain.DedupRecord, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		added, err := time.ParseInLocation(DateLayout, q.DateAdded, time.Local)
		if err != nil {
			logger.Debug("Unparseable date_added in question history",
				zap.String("hash", q.Hash),
				zap.String("date_added", q.DateAdded),
			)
		}
		records = append(records, domain.DedupRecord{
			Hash:      q.Hash,
			Question:  q.Question,
			DateAdded: added,
		})
	}
	return &domain.DedupSnapshot{Records: records}
}

func toDocument(snapshot *domain.DedupSnapshot) historyDocument {
	doc := historyDocument{Questions: make([]historyEntry, 0, snapshot.Len())}
	for _, r := range snapshot.Records {
		doc.Questions = append(doc.Questions, historyEntry{
			Hash:      r.Hash,
			Question:  r.Question,
			DateAdded: r.DateAdded.Format(DateLayout),
		})
	}
	return doc
}

var _ domain.QuestionHistory = (*FileStore)(nil)
