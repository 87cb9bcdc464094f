// Package reflection provides a durable, file-backed index of past analysis
// results with CRUD and multi-criterion search.
package reflection

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/kagami-lab/kagami/pkg/domain/interfaces"
	"github.com/kagami-lab/kagami/pkg/domain/model"
	"github.com/kagami-lab/kagami/pkg/domain/types"
	"github.com/kagami-lab/kagami/pkg/utils/logging"
)

// ErrNotFound is returned when a reflection ID does not exist in the index
var ErrNotFound = goerr.New("reflection not found")

// IndexFileName is the name of the index file inside the storage folder
const IndexFileName = "reflection-index.json"

// Store is the single writer of the reflection index file. It owns the
// in-memory index exclusively; all returned entries are defensive copies.
type Store struct {
	mu      sync.Mutex
	storage interfaces.Storage
	folder  string
	loaded  bool
	index   *model.ReflectionIndex
	now     func() time.Time
}

var _ interfaces.ReflectionRepository = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithClock injects a clock for tests
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a reflection store persisting into folder on the given storage
func New(storage interfaces.Storage, folder string, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		folder:  folder,
		index:   model.NewReflectionIndex(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) indexPath() string {
	return s.folder + "/" + IndexFileName
}

// Initialize ensures the storage folder exists and loads the index file.
// An absent index file is replaced with a fresh default; an unparsable one
// falls back to the default without error (corruption tolerance). Safe to
// call multiple times.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initializeLocked(ctx)
}

func (s *Store) initializeLocked(ctx context.Context) error {
	exists, err := s.storage.Exists(ctx, s.folder)
	if err != nil {
		return goerr.Wrap(err, "failed to check storage folder",
			goerr.T(types.ErrTagPersistence), goerr.V("folder", s.folder))
	}
	if !exists {
		if err := s.storage.CreateFolder(ctx, s.folder); err != nil {
			return goerr.Wrap(err, "failed to create storage folder",
				goerr.T(types.ErrTagPersistence), goerr.V("folder", s.folder))
		}
	}

	path := s.indexPath()
	exists, err = s.storage.Exists(ctx, path)
	if err != nil {
		return goerr.Wrap(err, "failed to load reflection index",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}

	if !exists {
		s.index = model.NewReflectionIndex()
		if err := s.saveLocked(ctx); err != nil {
			return err
		}
		s.loaded = true
		return nil
	}

	data, err := s.storage.Read(ctx, path)
	if err != nil {
		return goerr.Wrap(err, "failed to load reflection index",
			goerr.T(types.ErrTagPersistence), goerr.V("path", path))
	}

	var index model.ReflectionIndex
	if err := json.Unmarshal(data, &index); err != nil {
		// Corrupted index: start over with an empty one rather than
		// locking the user out of their reflection history feature.
		logging.From(ctx).Warn("reflection index is corrupted, starting with empty index",
			"path", path,
			"error", err.Error(),
		)
		s.index = model.NewReflectionIndex()
		s.loaded = true
		return nil
	}

	if index.Entries == nil {
		index.Entries = []*model.Reflection{}
	}
	if index.Version == "" {
		index.Version = model.ReflectionIndexVersion
	}
	s.index = &index
	s.loaded = true
	return nil
}

// ensureLoadedLocked lazily re-runs initialization for CRUD calls that
// arrive before Initialize.
func (s *Store) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.initializeLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	s.index.LastUpdated = s.now().UnixMilli()

	data, err := json.MarshalIndent(s.index, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to save reflection index",
			goerr.T(types.ErrTagPersistence))
	}
	if err := s.storage.Write(ctx, s.indexPath(), data); err != nil {
		return goerr.Wrap(err, "failed to save reflection index",
			goerr.T(types.ErrTagPersistence), goerr.V("path", s.indexPath()))
	}
	return nil
}

// Add assigns a fresh ID and timestamp, appends the entry, and persists the
// index. On persist failure the in-memory append is kept; the next
// successful save writes it out.
func (s *Store) Add(ctx context.Context, entry *model.Reflection) (*model.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	created := entry.Clone()
	created.ID = model.NewReflectionID()
	created.Timestamp = s.now().UnixMilli()
	if created.Date == "" {
		created.Date = s.now().Format("2006-01-02")
	}
	if created.Tags == nil {
		created.Tags = []string{}
	}
	if created.Keywords == nil {
		created.Keywords = []string{}
	}

	s.index.Entries = append(s.index.Entries, created)

	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	return created.Clone(), nil
}

// Get retrieves a reflection by ID
func (s *Store) Get(ctx context.Context, id model.ReflectionID) (*model.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	for _, entry := range s.index.Entries {
		if entry.ID == id {
			return entry.Clone(), nil
		}
	}
	return nil, goerr.Wrap(ErrNotFound, "reflection not found",
		goerr.T(types.ErrTagPersistence), goerr.V("id", id))
}

// Update applies the patch to the entry with the given ID, refreshes its
// timestamp, and persists the index. Fields absent from the patch are
// preserved; the ID is immutable.
func (s *Store) Update(ctx context.Context, id model.ReflectionID, patch model.ReflectionPatch) (*model.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	for _, entry := range s.index.Entries {
		if entry.ID != id {
			continue
		}

		if patch.Date != nil {
			entry.Date = *patch.Date
		}
		if patch.SourceNotePath != nil {
			entry.SourceNotePath = *patch.SourceNotePath
		}
		if patch.ReflectionText != nil {
			entry.ReflectionText = *patch.ReflectionText
		}
		if patch.Tags != nil {
			entry.Tags = append([]string{}, (*patch.Tags)...)
		}
		if patch.Keywords != nil {
			entry.Keywords = append([]string{}, (*patch.Keywords)...)
		}
		entry.Timestamp = s.now().UnixMilli()

		if err := s.saveLocked(ctx); err != nil {
			return nil, err
		}
		return entry.Clone(), nil
	}

	return nil, goerr.Wrap(ErrNotFound, "reflection not found",
		goerr.T(types.ErrTagPersistence), goerr.V("id", id))
}

// Delete removes the entry with the given ID and persists the index
func (s *Store) Delete(ctx context.Context, id model.ReflectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return err
	}

	for i, entry := range s.index.Entries {
		if entry.ID != id {
			continue
		}
		s.index.Entries = append(s.index.Entries[:i], s.index.Entries[i+1:]...)
		return s.saveLocked(ctx)
	}

	return goerr.Wrap(ErrNotFound, "reflection not found",
		goerr.T(types.ErrTagPersistence), goerr.V("id", id))
}

// List returns all reflections in insertion order as defensive copies
func (s *Store) List(ctx context.Context) ([]*model.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	result := make([]*model.Reflection, 0, len(s.index.Entries))
	for _, entry := range s.index.Entries {
		result = append(result, entry.Clone())
	}
	return result, nil
}

// Search returns reflections matching all supplied criteria, in stored order
func (s *Store) Search(ctx context.Context, query model.ReflectionQuery) ([]*model.Reflection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}

	result := make([]*model.Reflection, 0, len(s.index.Entries))
	for _, entry := range s.index.Entries {
		if matches(entry, query) {
			result = append(result, entry.Clone())
		}
	}
	return result, nil
}
