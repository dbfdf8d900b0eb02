package library

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/neurocosci/neuro-agent/internal/middleware"
)

func RegisterRoutes(container *restful.Container, handler *Handler) {
	ws := new(restful.WebService)

	ws.
		Path("/api/v1/library").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("").
			To(handler.GetLibrary).
			Doc("Get the saved-paper library").
			Metadata(restfulspec.KeyOpenAPITags, []string{"library"}).
			Writes(Library{}).
			Returns(200, "OK", Library{}))

	ws.
		Route(ws.POST("/folders").
			To(handler.CreateFolder).
			Doc("Create a folder").
			Metadata(restfulspec.KeyOpenAPITags, []string{"library"}).
			Reads(CreateFolderRequest{}).
			Writes(Folder{}).
			Returns(201, "Created", Folder{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	ws.
		Route(ws.DELETE("/folders/{id}").
			To(handler.DeleteFolder).
			Doc("Delete a folder").
			Metadata(restfulspec.KeyOpenAPITags, []string{"library"}).
			Param(ws.PathParameter("id", "Folder id").DataType("string")).
			Writes(DeleteResponse{}).
			Returns(200, "OK", DeleteResponse{}))

	ws.
		Route(ws.PATCH("/folders/{id}").
			To(handler.UpdateFolder).
			Doc("Rename a folder").
			Metadata(restfulspec.KeyOpenAPITags, []string{"library"}).
			Param(ws.PathParameter("id", "Folder id").DataType("string")).
			Reads(UpdateFolderRequest{}).
			Writes(Folder{}).
			Returns(200, "OK", Folder{}).
			Returns(404, "Folder Not Found", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("/papers").
			To(handler.SavePaper).
			Doc("Save a paper to the library").
			Metadata(restfulspec.KeyOpenAPITags, []string{"library"}).
			Reads(SavePaperRequest{}).
			Writes(Paper{}).
			Returns(201, "Created", Paper{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(409, "Paper Already Saved", middleware.ErrorResponse{}))

	ws.
		Route(ws.DELETE("/papers/{id}").
			To(handler.DeletePaper).
			Doc("Delete a paper").
			Metadata(restfulspec.KeyOpenAPITags, []string{"library"}).
			Param(ws.PathParameter("id", "Paper id").DataType("string")).
			Writes(DeleteResponse{}).
			Returns(200, "OK", DeleteResponse{}))

	ws.
		Route(ws.PATCH("/papers/{id}").
			To(handler.UpdatePaper).
			Doc("Move a paper or update its notes").
			Metadata(restfulspec.KeyOpenAPITags, []string{"library"}).
			Param(ws.PathParameter("id", "Paper id").DataType("string")).
			Reads(UpdatePaperRequest{}).
			Writes(Paper{}).
			Returns(200, "OK", Paper{}).
			Returns(404, "Paper Not Found", middleware.ErrorResponse{}))

	container.Add(ws)
}
