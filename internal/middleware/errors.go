package middleware

import (
	"errors"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

var (
	ErrEmptyQuestion  = errors.New("No question provided")
	ErrEmptyName      = errors.New("Folder name required")
	ErrEmptyPMID      = errors.New("PMID required")
	ErrUnknownEvalID  = errors.New("Unknown evaluation question id")
	ErrFolderNotFound = errors.New("Folder not found")
	ErrPaperNotFound  = errors.New("Paper not found")
	ErrDuplicatePaper = errors.New("Paper already in library")
)

type ErrorResponse struct {
	Error string `json:"error" description:"Error message"`
	Code  int    `json:"code" description:"HTTP status code"`
}

func HandleError(resp *restful.Response, err error, code int) {
	errorResponse := ErrorResponse{
		Error: err.Error(),
		Code:  code,
	}

	if writeErr := resp.WriteHeaderAndEntity(code, errorResponse); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
