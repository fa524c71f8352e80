package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/adbtrace/internal/capture"
	"github.com/danmuck/adbtrace/internal/config"
	"github.com/danmuck/adbtrace/internal/decoder"
	"github.com/danmuck/adbtrace/internal/observability"
	"github.com/danmuck/adbtrace/internal/protocol"
	"github.com/danmuck/adbtrace/internal/protocol/timing"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var ErrBadRequest = errors.New("bad decode request")

// decodeRequest is the query string of POST /decode layered over the
// server configuration.
type decodeRequest struct {
	Decoder    decoder.Config
	Format     capture.Format
	Channel    int
	Categories []protocol.Category
}

type DecodeResponse struct {
	Samplerate uint64 `json:"samplerate"`
	Tolerance  string `json:"tolerance"`
	decoder.Result
}

func (s *Server) parseDecodeRequest(c *gin.Context) (decodeRequest, error) {
	req := decodeRequest{
		Decoder: s.Config.Decoder.Decoder(),
		Format:  s.Config.Capture.Format,
		Channel: s.Config.Capture.Channel,
	}
	if raw := c.Query("samplerate"); raw != "" {
		rate, err := config.ParseSamplerate(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		req.Decoder.Samplerate = rate
	}
	if raw := c.Query("tolerance"); raw != "" {
		p, err := timing.ParseProfile(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		req.Decoder.Profile = p
	}
	if raw := c.Query("format"); raw != "" {
		f, err := capture.ParseFormat(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		req.Format = f
	}
	if raw := c.Query("channel"); raw != "" {
		ch, err := strconv.Atoi(raw)
		if err != nil || ch < 0 || ch > capture.MaxChannel {
			return req, fmt.Errorf("%w: %w: %q", ErrBadRequest, capture.ErrInvalidChannel, raw)
		}
		req.Channel = ch
	}
	if raw := c.Query("categories"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			cat, err := protocol.ParseCategory(strings.TrimSpace(name))
			if err != nil {
				return req, fmt.Errorf("%w: %w", ErrBadRequest, err)
			}
			req.Categories = append(req.Categories, cat)
		}
	}
	return req, nil
}

func (s *Server) handleDecode(c *gin.Context) {
	req, err := s.parseDecodeRequest(c)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.Config.Server.MaxCaptureBytes)
	src, err := capture.NewReader(body, req.Format, req.Channel)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	res, err := decoder.Run(c.Request.Context(), req.Decoder, src,
		decoder.WithRecorder(observability.NewDecodeMetrics(MetricsSource)))
	if err != nil {
		status := decodeStatus(err)
		observability.RecordCapture(MetricsSource, captureResult(err), 0, time.Since(start))
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	observability.RecordCapture(MetricsSource, observability.ResultOK, res.Stats.Samples, time.Since(start))

	if len(req.Categories) > 0 {
		collected := protocol.Collector{Annotations: res.Annotations}
		res.Annotations = collected.Filter(req.Categories...)
	}

	log.Debug().
		Str("node", s.ID).
		Uint64("samples", res.Stats.Samples).
		Int("annotations", res.Stats.Annotations).
		Int("transactions", res.Stats.Transactions).
		Msg("capture decoded")
	c.JSON(http.StatusOK, DecodeResponse{
		Samplerate: req.Decoder.Samplerate,
		Tolerance:  req.Decoder.Profile.String(),
		Result:     res,
	})
}

func decodeStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, decoder.ErrNoSamplerate), errors.Is(err, capture.ErrInvalidSample):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func captureResult(err error) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return observability.ResultCancelled
	}
	return observability.ResultError
}
