package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/renderer"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	SamplesPerPass int   `json:"samplesPerPass"` // Samples per pixel added by each pass
	Passes         int   `json:"passes"`         // Number of passes
	Seed           int64 `json:"seed"`
	Sensor         int   `json:"sensor"`
}

// ProgressUpdate represents a single progressive update sent via SSE
type ProgressUpdate struct {
	RenderID    string               `json:"renderId"`
	PassNumber  int                  `json:"passNumber"`
	TotalPasses int                  `json:"totalPasses"`
	ImageData   string               `json:"imageData"` // Base64 encoded PNG
	Stats       renderer.RenderStats `json:"stats"`
	IsComplete  bool                 `json:"isComplete"`
	ElapsedMs   int64                `json:"elapsedMs"`
}

// parseRenderRequest parses request parameters
func parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	values := r.URL.Query()
	req := &RenderRequest{}
	var err error
	if req.SamplesPerPass, err = parseIntParam(values, "spp", 4, 1, 10000); err != nil {
		return nil, err
	}
	if req.Passes, err = parseIntParam(values, "passes", 4, 1, 1000); err != nil {
		return nil, err
	}
	if req.Sensor, err = parseIntParam(values, "sensor", 0, 0, 1000); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", 0, 0, 1<<30)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)
	return req, nil
}

// handleRender renders a scene in passes and streams the running average
// of all passes via SSE. Log entries emitted meanwhile are streamed as
// console events.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming not supported"))
		return
	}
	req, err := parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	stream := &sseWriter{w: w, flusher: flusher}

	renderID := uuid.NewString()
	console := make(chan ConsoleMessage, 100)
	s.console.Subscribe(renderID, console)
	defer s.console.Unsubscribe(renderID)

	sc, err := s.loadScene(r.URL.Query())
	if err != nil {
		stream.send("error", err.Error())
		return
	}
	logrus.Infof("server: render %s of %s, %d passes of %d spp", renderID, r.URL.Query().Get("scene"), req.Passes, req.SamplesPerPass)

	ctx := r.Context()
	startTime := time.Now()
	var sum []core.Vec3
	var stats renderer.RenderStats
	for pass := 1; pass <= req.Passes; pass++ {
		result, err := renderer.Render(ctx, sc, renderer.Options{
			SamplesPerPixel: req.SamplesPerPass,
			Seed:            req.Seed + int64(pass)*7919,
			SensorIndex:     req.Sensor,
		})
		if err != nil {
			stream.send("error", fmt.Sprintf("render error: %v", err))
			return
		}
		average := accumulate(&sum, result, pass)
		stats.TotalPixels = result.Stats.TotalPixels
		stats.TotalSamples += result.Stats.TotalSamples
		stats.InvalidSamples += result.Stats.InvalidSamples
		stats.Tiles += result.Stats.Tiles
		stats.AverageSamples = float64(stats.TotalSamples) / float64(max(1, stats.TotalPixels))

		imageData, err := imageToBase64PNG(average.ToImage())
		if err != nil {
			stream.send("error", fmt.Sprintf("failed to encode image: %v", err))
			return
		}
		drainConsole(stream, console)
		stream.sendJSON("progress", ProgressUpdate{
			RenderID:    renderID,
			PassNumber:  pass,
			TotalPasses: req.Passes,
			ImageData:   imageData,
			Stats:       stats,
			IsComplete:  pass == req.Passes,
			ElapsedMs:   time.Since(startTime).Milliseconds(),
		})
	}
	drainConsole(stream, console)
	stream.send("complete", "Rendering completed")
}

// accumulate adds result to sum and returns the mean over the passes so far
func accumulate(sum *[]core.Vec3, result *renderer.Result, passes int) *renderer.Result {
	if *sum == nil {
		*sum = make([]core.Vec3, len(result.Pixels))
	}
	average := &renderer.Result{Width: result.Width, Height: result.Height, Pixels: make([]core.Vec3, len(result.Pixels))}
	for i, p := range result.Pixels {
		(*sum)[i] = (*sum)[i].Add(p)
		average.Pixels[i] = (*sum)[i].Multiply(1 / float64(passes))
	}
	return average
}

func drainConsole(stream *sseWriter, console <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-console:
			stream.sendJSON("console", msg)
		default:
			return
		}
	}
}

// sseWriter writes server-sent events
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseWriter) send(event, data string) {
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data)
	s.flusher.Flush()
}

func (s *sseWriter) sendJSON(event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.send("error", err.Error())
		return
	}
	s.send(event, string(data))
}
