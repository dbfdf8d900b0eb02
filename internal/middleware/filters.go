package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

// Logger is a go-restful filter that logs every request with its duration.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()

	chain.ProcessFilter(req, resp)

	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("duration", time.Since(start)).
		Msg("Request handled")
}

// RecoverPanic converts handler panics into a 500 response instead of
// tearing down the connection.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("path", req.Request.URL.Path).
				Msg("Recovered from panic")

			errorResponse := ErrorResponse{
				Error: "Internal server error",
				Code:  http.StatusInternalServerError,
			}
			_ = resp.WriteHeaderAndEntity(http.StatusInternalServerError, errorResponse)
		}
	}()

	chain.ProcessFilter(req, resp)
}
