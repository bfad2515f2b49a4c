package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"propostas/internal/importer"
	"propostas/internal/tableio"
)

// upload is a received file staged under the uploads folder.
type upload struct {
	name       string // client file name
	inputPath  string
	outputPath string
	format     tableio.Format
}

// stageUpload validates the multipart request and saves the file.
// On error the response has already been written.
func (h *Handler) stageUpload(c *gin.Context) (*upload, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing upload field \"file\""})
		return nil, false
	}

	name := filepath.Base(file.Filename)
	if _, err := tableio.DetectFormat(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	format := tableio.Format(strings.ToLower(c.DefaultPostForm("format", string(tableio.FormatXLSX))))
	if format != tableio.FormatXLSX && format != tableio.FormatCSV {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown output format %q", format)})
		return nil, false
	}

	id := uuid.New().String()
	up := &upload{
		name:       name,
		inputPath:  filepath.Join(h.ws.Uploads, id+strings.ToLower(filepath.Ext(name))),
		outputPath: filepath.Join(h.ws.Uploads, id+"_out."+string(format)),
		format:     format,
	}
	if err := h.save(c, file, up.inputPath); err != nil {
		h.log.Error("save upload failed", zap.String("file", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store upload"})
		return nil, false
	}
	return up, true
}

func (h *Handler) save(c *gin.Context, file *multipart.FileHeader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return c.SaveUploadedFile(file, dst)
}

func (up *upload) options() importer.ImportOptions {
	return importer.ImportOptions{
		InputPath:   up.inputPath,
		OutputPath:  up.outputPath,
		Source:      "http",
		DisplayName: up.name,
	}
}

// downloadName is the attachment name offered to the client.
func (up *upload) downloadName() string {
	base := strings.TrimSuffix(up.name, filepath.Ext(up.name))
	return base + "_formatado." + string(up.format)
}

// Process runs an uploaded table and returns the result as an attachment.
// POST /api/process
func (h *Handler) Process(c *gin.Context) {
	up, ok := h.stageUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.inputPath)
	defer os.Remove(up.outputPath)

	report, err := h.coord.Run(up.options())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tableio.ErrEmptyTable) || errors.Is(err, tableio.ErrUnsupportedFormat) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("X-Run-ID", report.RunID)
	c.Header("X-Fallback", strconv.FormatBool(report.Fallback))
	c.FileAttachment(up.outputPath, up.downloadName())
}

// ProcessStream runs an uploaded table and streams progress as SSE. The final
// "done" event carries the report and a one-time download URL.
// POST /api/process/stream
func (h *Handler) ProcessStream(c *gin.Context) {
	up, ok := h.stageUpload(c)
	if !ok {
		return
	}
	defer os.Remove(up.inputPath)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	for event := range h.coord.Import(up.options()) {
		if event.Type == "done" {
			if report, ok := event.Data.(*importer.Report); ok {
				token := h.downloads.put(pendingDownload{
					filePath: up.outputPath,
					fileName: up.downloadName(),
					runID:    report.RunID,
				}, downloadTTL)
				event.Data = gin.H{
					"report":      report,
					"downloadUrl": "/api/download/" + token,
				}
			}
		}

		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// Download serves a streamed result once.
// GET /api/download/:token
func (h *Handler) Download(c *gin.Context) {
	d, ok := h.downloads.take(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download expired or unknown"})
		return
	}
	defer os.Remove(d.filePath)

	c.Header("X-Run-ID", d.runID)
	c.FileAttachment(d.filePath, d.fileName)
}
