package controllers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"memoria/internal/services"
	"memoria/pkg/utils"
)

// uuidParam reads a path parameter as a UUID and answers 404 when it is
// not one.
func uuidParam(c *gin.Context, name string, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, notFound)
		return uuid.Nil, false
	}
	return id, true
}

func toFileUpload(fh *multipart.FileHeader) services.FileUpload {
	return services.FileUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// formFile returns the single file sent under field, answering 400 with the
// field name when it is missing.
func formFile(c *gin.Context, field string) (services.FileUpload, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		utils.HandleServiceError(c, utils.NewValidationError(field, "No file uploaded"))
		return services.FileUpload{}, false
	}
	return toFileUpload(fh), true
}
