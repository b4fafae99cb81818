package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"receiptlens/constants"
	"receiptlens/internal/common"
	"receiptlens/internal/export"
	"receiptlens/internal/pipeline"
	"receiptlens/internal/receipts"
)

// Server is the HTTP boundary: accepts receipt uploads, runs the extraction
// pipeline, and reports which fields could not be extracted so the user can
// retake the photo.
type Server struct {
	engine *gin.Engine
	proc   *pipeline.Processor
	store  *receipts.Service
	export *export.Service
	logger *slog.Logger
}

func NewServer(proc *pipeline.Processor, store *receipts.Service, exp *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine: gin.New(),
		proc:   proc,
		store:  store,
		export: exp,
		logger: logger,
	}
	s.engine.Use(gin.Recovery(), s.requestContext)
	s.routes()
	return s
}

// requestContext tags every request with an id for log correlation. Clients
// may supply their own via X-Request-ID.
func (s *Server) requestContext(c *gin.Context) {
	reqID := c.GetHeader("X-Request-ID")
	if reqID == "" {
		reqID = uuid.New().String()
	}
	c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), reqID))
	c.Header("X-Request-ID", reqID)
	c.Next()
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.POST("/receipts", s.uploadReceipt)
	s.engine.GET("/receipts", s.listReceipts)
	s.engine.GET("/receipts/export", s.exportReceipts)
}

// Handler exposes the router for tests and for custom http.Server setups.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) uploadReceipt(c *gin.Context) {
	userID := c.PostForm("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	ext := filepath.Ext(fh.Filename)
	if !constants.IsAllowedExt(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type: %q", ext)})
		return
	}

	// temp copy removed on every path once the pipeline returns
	tmp := filepath.Join(os.TempDir(), "rl-upload-"+uuid.New().String()+strings.ToLower(ext))
	if err := c.SaveUploadedFile(fh, tmp); err != nil {
		s.logger.Error("server.upload.save_failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store upload"})
		return
	}
	defer func() {
		if err := os.Remove(tmp); err != nil {
			s.logger.Warn("server.upload.cleanup_failed", "path", tmp, "error", err)
		}
	}()

	ctx := common.WithUserID(c.Request.Context(), userID)
	fields, err := s.proc.Process(ctx, tmp)
	if err != nil {
		s.logger.Error("server.process.failed",
			"req_id", common.RequestIDFromContext(ctx), "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "receipt processing failed"})
		return
	}

	if missing := fields.Missing(); len(missing) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"missing": missing,
			"message": fmt.Sprintf("could not extract: %s; please upload a clearer image", strings.Join(missing, ", ")),
		})
		return
	}

	rec, err := s.store.SaveExtracted(ctx, userID, tmp, fields)
	if err != nil {
		s.logger.Error("server.save.failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save receipt"})
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) listReceipts(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	recs, err := s.store.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("server.list.failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list receipts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipts": recs})
}

func (s *Server) exportReceipts(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	data, err := s.export.ExportReceiptsXLSX(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("server.export.failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not export receipts"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receipts.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
