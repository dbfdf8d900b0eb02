package library

import "time"

type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Paper struct {
	ID       string    `json:"id"`
	PMID     string    `json:"pmid"`
	Title    string    `json:"title"`
	FolderID *string   `json:"folder_id"`
	SavedAt  time.Time `json:"saved_at"`
	Notes    string    `json:"notes"`
}

// Library is the on-disk shape of the user's saved papers and folders.
type Library struct {
	Folders []Folder `json:"folders"`
	Papers  []Paper  `json:"papers"`
}

type CreateFolderRequest struct {
	Name string `json:"name"`
}

type UpdateFolderRequest struct {
	Name *string `json:"name,omitempty"`
}

type SavePaperRequest struct {
	PMID     string  `json:"pmid"`
	Title    string  `json:"title"`
	FolderID *string `json:"folder_id,omitempty"`
}

type UpdatePaperRequest struct {
	FolderID *string `json:"folder_id,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

type DeleteResponse struct {
	Success bool `json:"success"`
}
