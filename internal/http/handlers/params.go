package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/festoofficial/festo/domain"
	"github.com/festoofficial/festo/internal/http/middleware"
)

// maxUploadBytes bounds QR and payment proof images
const maxUploadBytes = 5 << 20

// idParam parses a positive numeric path parameter, writing 400 otherwise
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return uint(id), true
}

// actor returns the authenticated caller, writing 401 when absent
func actor(c *gin.Context) (domain.Actor, bool) {
	a, ok := middleware.Actor(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized, "")
		return domain.Actor{}, false
	}
	return a, true
}

// readUpload reads the multipart file field, writing 400 when missing or too large
func readUpload(c *gin.Context, field, missingMessage string) (*multipart.FileHeader, []byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+1<<20)
	header, err := c.FormFile(field)
	if err != nil {
		badRequest(c, missingMessage, nil)
		return nil, nil, false
	}
	if header.Size > maxUploadBytes {
		badRequest(c, "File is too large", nil)
		return nil, nil, false
	}
	f, err := header.Open()
	if err != nil {
		badRequest(c, missingMessage, err)
		return nil, nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, missingMessage, err)
		return nil, nil, false
	}
	return header, data, true
}
