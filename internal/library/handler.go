package library

import (
	"errors"
	"net/http"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/neurocosci/neuro-agent/internal/middleware"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{
		store: store,
	}
}

// GetLibrary handles GET /api/v1/library
func (h *Handler) GetLibrary(req *restful.Request, resp *restful.Response) {
	library, err := h.store.Load()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load library")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, library)
}

// CreateFolder handles POST /api/v1/library/folders
func (h *Handler) CreateFolder(req *restful.Request, resp *restful.Response) {
	var createRequest CreateFolderRequest
	if err := req.ReadEntity(&createRequest); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(createRequest.Name)
	if name == "" {
		middleware.HandleError(resp, middleware.ErrEmptyName, http.StatusBadRequest)
		return
	}

	folder, err := h.store.CreateFolder(name)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create folder")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusCreated, folder)
}

// DeleteFolder handles DELETE /api/v1/library/folders/{id}
func (h *Handler) DeleteFolder(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("id")

	if err := h.store.DeleteFolder(id); err != nil {
		log.Error().Err(err).Msg("Failed to delete folder")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, DeleteResponse{Success: true})
}

// UpdateFolder handles PATCH /api/v1/library/folders/{id}
func (h *Handler) UpdateFolder(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("id")

	var updateRequest UpdateFolderRequest
	if err := req.ReadEntity(&updateRequest); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	folder, err := h.store.UpdateFolder(id, updateRequest.Name)
	if err != nil {
		if errors.Is(err, middleware.ErrFolderNotFound) {
			middleware.HandleError(resp, err, http.StatusNotFound)
			return
		}
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, folder)
}

// SavePaper handles POST /api/v1/library/papers
func (h *Handler) SavePaper(req *restful.Request, resp *restful.Response) {
	var saveRequest SavePaperRequest
	if err := req.ReadEntity(&saveRequest); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	pmid := strings.TrimSpace(saveRequest.PMID)
	if pmid == "" {
		middleware.HandleError(resp, middleware.ErrEmptyPMID, http.StatusBadRequest)
		return
	}

	paper, err := h.store.SavePaper(pmid, strings.TrimSpace(saveRequest.Title), saveRequest.FolderID)
	if err != nil {
		if errors.Is(err, middleware.ErrDuplicatePaper) {
			middleware.HandleError(resp, err, http.StatusConflict)
			return
		}
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusCreated, paper)
}

// DeletePaper handles DELETE /api/v1/library/papers/{id}
func (h *Handler) DeletePaper(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("id")

	if err := h.store.DeletePaper(id); err != nil {
		log.Error().Err(err).Msg("Failed to delete paper")
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, DeleteResponse{Success: true})
}

// UpdatePaper handles PATCH /api/v1/library/papers/{id}
func (h *Handler) UpdatePaper(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("id")

	var updateRequest UpdatePaperRequest
	if err := req.ReadEntity(&updateRequest); err != nil {
		middleware.HandleError(resp, err, http.StatusBadRequest)
		return
	}

	paper, err := h.store.UpdatePaper(id, updateRequest)
	if err != nil {
		if errors.Is(err, middleware.ErrPaperNotFound) {
			middleware.HandleError(resp, err, http.StatusNotFound)
			return
		}
		middleware.HandleError(resp, err, http.StatusInternalServerError)
		return
	}

	resp.WriteHeaderAndEntity(http.StatusOK, paper)
}
