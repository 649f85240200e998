package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/app"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/transport/http/response"
)

// multipart framing allowance on top of the file size limit
const formOverhead = 1 << 20

type DocumentHandler struct {
	documentService *app.DocumentService
}

type ListFilesResponse struct {
	Files []string `json:"files"`
}

type DocumentResponse struct {
	Filename   string `json:"filename"`
	FileURL    string `json:"file_url"`
	UploadDate string `json:"upload_date"`
	Content    string `json:"content"`
}

func NewDocumentHandler(documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	maxBytes := h.documentService.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, app.ErrFileTooLarge.Error())
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxBytes {
		response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, app.ErrFileTooLarge.Error())
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}

	result, err := h.documentService.Upload(c.Request.Context(), app.UploadInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrUnsupportedFormat):
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFormat, "File format not supported")
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, err.Error())
		case errors.Is(err, app.ErrExtractFailed), errors.Is(err, app.ErrEmptyDocument):
			response.Error(c, http.StatusBadRequest, response.CodeUnreadableFile, err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer,
				"An internal error occurred while uploading the PDF. Please try again later.")
		}
		return
	}

	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	names, err := h.documentService.List(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoDocuments):
			response.Error(c, http.StatusNotFound, response.CodeNoDocuments, "No files found in the database.")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer,
				"An internal error occurred while retrieving the file list. Please try again later.")
		}
		return
	}
	response.OK(c, ListFilesResponse{Files: names})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.documentService.Get(c.Request.Context(), c.Param("filename"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		}
		return
	}
	response.OK(c, DocumentResponse{
		Filename:   doc.Filename,
		FileURL:    doc.FileURL,
		UploadDate: doc.UploadDate.UTC().Format("2006-01-02T15:04:05Z"),
		Content:    doc.Content,
	})
}
