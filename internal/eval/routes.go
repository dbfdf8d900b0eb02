package eval

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/neurocosci/neuro-agent/internal/middleware"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1/eval").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("/questions").
			To(handler.ListQuestions).
			Doc("List the evaluation question bank").
			Metadata(restfulspec.KeyOpenAPITags, []string{"eval"}).
			Writes([]EvalQuestion{}).
			Returns(200, "OK", []EvalQuestion{}))

	ws.
		Route(ws.POST("/run").
			To(handler.RunBatch).
			Doc("Run an evaluation batch").
			Metadata(restfulspec.KeyOpenAPITags, []string{"eval"}).
			Reads(RunBatchRequest{}).
			Writes(BatchResult{}).
			Returns(200, "OK", BatchResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("/questions/{id}/run").
			To(handler.RunSingle).
			Doc("Run a single evaluation question").
			Metadata(restfulspec.KeyOpenAPITags, []string{"eval"}).
			Param(ws.PathParameter("id", "Question id").DataType("string")).
			Writes(QuestionResult{}).
			Returns(200, "OK", QuestionResult{}).
			Returns(404, "Question Not Found", middleware.ErrorResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	container.Add(ws)
}
