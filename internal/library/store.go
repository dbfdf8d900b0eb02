package library

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/neurocosci/neuro-agent/internal/middleware"
)

// Store persists the library as a single JSON file, last-write-wins.
// Best-effort, not transactional: concurrent processes can race; the mutex
// only serializes writers inside this process.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) load() (Library, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Library{Folders: []Folder{}, Papers: []Paper{}}, nil
		}
		return Library{}, fmt.Errorf("failed to read library file: %w", err)
	}

	var library Library
	if err := json.Unmarshal(data, &library); err != nil {
		return Library{}, fmt.Errorf("failed to parse library file: %w", err)
	}

	if library.Folders == nil {
		library.Folders = []Folder{}
	}
	if library.Papers == nil {
		library.Papers = []Paper{}
	}

	return library, nil
}

func (s *Store) save(library Library) error {
	data, err := json.MarshalIndent(library, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal library: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write library file: %w", err)
	}

	return nil
}

func (s *Store) Load() (Library, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) CreateFolder(name string) (Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	library, err := s.load()
	if err != nil {
		return Folder{}, err
	}

	folder := Folder{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	library.Folders = append(library.Folders, folder)
	if err := s.save(library); err != nil {
		return Folder{}, err
	}

	return folder, nil
}

// DeleteFolder removes a folder; papers filed under it are moved to the
// library root rather than deleted.
func (s *Store) DeleteFolder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	library, err := s.load()
	if err != nil {
		return err
	}

	folders := library.Folders[:0]
	for _, folder := range library.Folders {
		if folder.ID != id {
			folders = append(folders, folder)
		}
	}
	library.Folders = folders

	for i := range library.Papers {
		if library.Papers[i].FolderID != nil && *library.Papers[i].FolderID == id {
			library.Papers[i].FolderID = nil
		}
	}

	return s.save(library)
}

func (s *Store) UpdateFolder(id string, name *string) (Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	library, err := s.load()
	if err != nil {
		return Folder{}, err
	}

	for i := range library.Folders {
		if library.Folders[i].ID == id {
			if name != nil {
				library.Folders[i].Name = *name
			}
			if err := s.save(library); err != nil {
				return Folder{}, err
			}
			return library.Folders[i], nil
		}
	}

	return Folder{}, middleware.ErrFolderNotFound
}

func (s *Store) SavePaper(pmid, title string, folderID *string) (Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	library, err := s.load()
	if err != nil {
		return Paper{}, err
	}

	for _, paper := range library.Papers {
		if paper.PMID == pmid {
			return Paper{}, middleware.ErrDuplicatePaper
		}
	}

	if title == "" {
		title = "Untitled"
	}

	paper := Paper{
		ID:       uuid.NewString(),
		PMID:     pmid,
		Title:    title,
		FolderID: folderID,
		SavedAt:  time.Now().UTC(),
		Notes:    "",
	}

	library.Papers = append(library.Papers, paper)
	if err := s.save(library); err != nil {
		return Paper{}, err
	}

	return paper, nil
}

func (s *Store) DeletePaper(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	library, err := s.load()
	if err != nil {
		return err
	}

	papers := library.Papers[:0]
	for _, paper := range library.Papers {
		if paper.ID != id {
			papers = append(papers, paper)
		}
	}
	library.Papers = papers

	return s.save(library)
}

func (s *Store) UpdatePaper(id string, update UpdatePaperRequest) (Paper, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	library, err := s.load()
	if err != nil {
		return Paper{}, err
	}

	for i := range library.Papers {
		if library.Papers[i].ID == id {
			if update.FolderID != nil {
				library.Papers[i].FolderID = update.FolderID
			}
			if update.Notes != nil {
				library.Papers[i].Notes = *update.Notes
			}
			if err := s.save(library); err != nil {
				return Paper{}, err
			}
			return library.Papers[i], nil
		}
	}

	return Paper{}, middleware.ErrPaperNotFound
}
