package server

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/i4/internal/auth"
	"github.com/danmuck/i4/internal/observability"
	"github.com/danmuck/i4/internal/protocol"
	"github.com/danmuck/i4/internal/protocol/frame"
	"github.com/danmuck/i4/internal/protocol/packet"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DecodeRequest carries either notation text or a base64 mudmode frame.
type DecodeRequest struct {
	Text  *string `json:"text,omitempty"`
	Frame string  `json:"frame,omitempty"`
}

type DecodeResponse struct {
	Kind     string             `json:"kind"`
	Value    any                `json:"value"`
	Text     string             `json:"text"`
	Envelope *protocol.Envelope `json:"envelope,omitempty"`
}

// EncodeRequest carries a value in the JSON form protocol.ToNative emits.
// Outbound applies the packet envelope rules before encoding.
type EncodeRequest struct {
	Value    json.RawMessage `json:"value"`
	Outbound bool            `json:"outbound"`
}

type EncodeResponse struct {
	Text  string `json:"text"`
	Frame string `json:"frame"`
	Size  int    `json:"size"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.appeared).String(),
			"service": appName,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	if s.guard != nil {
		v1.Use(auth.Require(s.guard))
	}
	v1.GET("/status", func(c *gin.Context) {
		if s.status == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no upstream configured"})
			return
		}
		c.JSON(http.StatusOK, s.status.Snapshot())
	})
	v1.POST("/notation/decode", s.handleDecode)
	v1.POST("/notation/encode", s.handleEncode)
}

func (s *Server) handleDecode(c *gin.Context) {
	var req DecodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "request"})
		return
	}
	switch {
	case req.Text != nil && req.Frame == "":
		v, err := protocol.Parse(*req.Text)
		if err != nil {
			codecError(c, err)
			return
		}
		c.JSON(http.StatusOK, DecodeResponse{
			Kind:  protocol.KindOf(v).String(),
			Value: protocol.ToNative(v),
			Text:  *req.Text,
		})
	case req.Text == nil && req.Frame != "":
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(req.Frame))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "frame: " + err.Error(), "kind": "request"})
			return
		}
		p, err := packet.Decode(raw)
		if err != nil {
			codecError(c, err)
			return
		}
		resp := DecodeResponse{
			Kind:  protocol.KindList.String(),
			Value: protocol.ToNative(p.Data()),
			Text:  p.Text(),
		}
		if env, err := p.Envelope(); err == nil {
			resp.Envelope = &env
		}
		c.JSON(http.StatusOK, resp)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of text or frame is required", "kind": "request"})
	}
}

func (s *Server) handleEncode(c *gin.Context) {
	var req EncodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "request"})
		return
	}
	if len(req.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required", "kind": "request"})
		return
	}
	v, err := protocol.DecodeJSON(req.Value)
	if err != nil {
		codecError(c, err)
		return
	}

	var text string
	var b []byte
	if req.Outbound {
		p, err := packet.BuildOutbound(v)
		if err != nil {
			codecError(c, err)
			return
		}
		text, b = p.Text(), p.Bytes()
	} else {
		if text, err = protocol.Encode(v); err != nil {
			codecError(c, err)
			return
		}
		if b, err = frame.ToFrame(text); err != nil {
			codecError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, EncodeResponse{
		Text:  text,
		Frame: base64.StdEncoding.EncodeToString(b),
		Size:  len(b),
	})
}

func codecError(c *gin.Context, err error) {
	kind := packet.ErrorKind(err)
	observability.RecordCodecError(kind)
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kind})
}
