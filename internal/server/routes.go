package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/danmuck/meatpack/internal/stream"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	headerLines    = "X-Meatpack-Lines"
	headerBytesIn  = "X-Meatpack-Bytes-In"
	headerBytesOut = "X-Meatpack-Bytes-Out"

	contentTypePacked = "application/octet-stream"
)

var ErrBadQuery = errors.New("server: bad query parameter")

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": "0.0.1",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	v1.POST("/pack", s.handlePack)
	v1.POST("/unpack", s.handleUnpack)
}

func (s *Server) handlePack(c *gin.Context) {
	cfg := stream.PackConfig{
		BufferSize:      s.cfg.Packer.BufferSize,
		StripComments:   s.cfg.Packer.StripComments,
		StripWhitespace: s.cfg.Packer.StripWhitespace,
		Logger:          &log.Logger,
	}
	var err error
	if cfg.StripComments, err = queryBool(c, "strip_comments", cfg.StripComments); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if cfg.StripWhitespace, err = queryBool(c, "strip_whitespace", cfg.StripWhitespace); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, ok := s.readBody(c)
	if !ok {
		return
	}
	out, stats, err := stream.PackBytes(body, cfg)
	s.respond(c, out, stats, err)
}

func (s *Server) handleUnpack(c *gin.Context) {
	body, ok := s.readBody(c)
	if !ok {
		return
	}
	out, stats, err := stream.UnpackBytes(body, stream.UnpackConfig{
		BufferSize: s.cfg.Unpacker.BufferSize,
		Logger:     &log.Logger,
	})
	s.respond(c, out, stats, err)
}

func (s *Server) readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxBodyBytes))
	if err == nil {
		return body, true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit),
		})
		return nil, false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return nil, false
}

func (s *Server) respond(c *gin.Context, out []byte, stats stream.Stats, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		if stream.IsProtocolError(err) {
			status = http.StatusUnprocessableEntity
		}
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error(), "kind": stream.ErrorKind(err)})
		return
	}
	c.Header(headerLines, strconv.FormatInt(stats.Lines, 10))
	c.Header(headerBytesIn, strconv.FormatInt(stats.BytesIn, 10))
	c.Header(headerBytesOut, strconv.FormatInt(stats.BytesOut, 10))
	c.Data(http.StatusOK, contentTypePacked, out)
}

func queryBool(c *gin.Context, key string, fallback bool) (bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q", ErrBadQuery, key, raw)
	}
	return v, nil
}
