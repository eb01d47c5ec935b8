package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/pdfier/internal/client/models"
	"github.com/dmitrijs2005/pdfier/internal/devserver/store"
)

const (
	maxUploadBytes = 32 << 20
	minMergeFiles  = 2
)

var pdfMagic = []byte("%PDF-")

type pdfFile struct {
	name string
	data []byte
}

// readPDFs loads the "files" parts and checks each starts with a PDF header.
func readPDFs(c *gin.Context) ([]pdfFile, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		missing(c, "body", "files")
		return nil, false
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		missing(c, "body", "files")
		return nil, false
	}

	files := make([]pdfFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			fail(c, http.StatusBadRequest, fmt.Sprintf("Could not read %s", fh.Filename))
			return nil, false
		}
		if !bytes.HasPrefix(data, pdfMagic) {
			fail(c, http.StatusBadRequest, fmt.Sprintf("%s is not a PDF file", fh.Filename))
			return nil, false
		}
		files = append(files, pdfFile{name: fh.Filename, data: data})
	}
	return files, true
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadBytes {
		return nil, errors.New("file too large")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// consume charges a member's daily allowance. Guests are not tracked here.
func (h *HandlerSet) consume(c *gin.Context) (*models.UsageMetrics, bool) {
	userID := currentUserID(c)
	if userID == "" {
		return nil, true
	}
	usage, err := h.store.ConsumePDF(userID)
	if err != nil {
		if errors.Is(err, store.ErrLimitReached) {
			fail(c, http.StatusTooManyRequests, fmt.Sprintf(
				"Daily limit of %d PDF operations reached. Upgrade your plan or try again tomorrow.",
				usage.PDFProcessedLimitDaily))
			return nil, false
		}
		fail(c, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return &usage, true
}

// respond stores the outputs and answers with their download URLs.
func (h *HandlerSet) respond(c *gin.Context, message string, usage *models.UsageMetrics, outputs []pdfFile) {
	urls := make([]string, 0, len(outputs))
	for _, o := range outputs {
		res := h.store.SaveResult(currentUserID(c), o.name, o.data, h.cfg.PublicURL)
		urls = append(urls, h.cfg.PublicURL+"/files/"+res.ID)
	}
	c.JSON(http.StatusOK, models.ToolResult{Message: message, DownloadURLs: urls, UserUsage: usage})
}

// Merge checks the inputs and answers with the first document under the
// merged name. No PDF processing happens on the dev backend.
func (h *HandlerSet) Merge(c *gin.Context) {
	files, ok := readPDFs(c)
	if !ok {
		return
	}
	if len(files) < minMergeFiles {
		fail(c, http.StatusBadRequest, "At least two PDF files are required to merge")
		return
	}
	usage, ok := h.consume(c)
	if !ok {
		return
	}
	h.respond(c, "Files merged successfully", usage, []pdfFile{{name: "merged.pdf", data: files[0].data}})
}

func (h *HandlerSet) Compress(c *gin.Context) {
	files, ok := readPDFs(c)
	if !ok {
		return
	}
	if _, err := models.ParseCompressionLevel(c.PostForm("compression_level")); err != nil {
		fail(c, http.StatusBadRequest, "compression_level must be low, medium or high")
		return
	}
	usage, ok := h.consume(c)
	if !ok {
		return
	}

	out := make([]pdfFile, 0, len(files))
	for _, f := range files {
		out = append(out, pdfFile{name: "compressed_" + f.name, data: f.data})
	}
	h.respond(c, "Files compressed successfully", usage, out)
}

func (h *HandlerSet) Protect(c *gin.Context) {
	files, ok := readPDFs(c)
	if !ok {
		return
	}
	if c.PostForm("password") == "" {
		missing(c, "body", "password")
		return
	}
	perms := models.DefaultPermissions()
	if raw := c.PostForm("permissions"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &perms); err != nil {
			fail(c, http.StatusBadRequest, "permissions must be a JSON object")
			return
		}
	}
	switch perms.Printing {
	case models.PrintingNone, models.PrintingLow, models.PrintingHigh:
	default:
		fail(c, http.StatusBadRequest, "printing must be none, low or high")
		return
	}
	usage, ok := h.consume(c)
	if !ok {
		return
	}

	out := make([]pdfFile, 0, len(files))
	for _, f := range files {
		out = append(out, pdfFile{name: "protected_" + f.name, data: f.data})
	}
	h.respond(c, "Files protected successfully", usage, out)
}
