package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-plugin-renderer/pkg/lanes"
	"github.com/df07/go-plugin-renderer/pkg/loaders"
	"github.com/df07/go-plugin-renderer/pkg/plugin"
	"github.com/df07/go-plugin-renderer/pkg/scene"
	"github.com/sirupsen/logrus"
)

// Server serves renders and inspections of the YAML scenes in a directory
type Server struct {
	scenesDir string
	variant   lanes.Variant
	console   *ConsoleHook
}

// NewServer creates a server for the scenes stored in scenesDir
func NewServer(scenesDir string, v lanes.Variant) *Server {
	return &Server{scenesDir: scenesDir, variant: v, console: NewConsoleHook()}
}

// PluginInfo describes a registered plugin
type PluginInfo struct {
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/plugins", s.handlePlugins)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start forwards log entries to render streams and serves on addr
func (s *Server) Start(addr string) error {
	logrus.AddHook(s.console)
	logrus.Infof("Starting web server on http://localhost%s serving %s", addr, s.scenesDir)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePlugins lists the plugins scenes may instantiate
func (s *Server) handlePlugins(w http.ResponseWriter, r *http.Request) {
	var plugins []PluginInfo
	for _, name := range plugin.Default.Names() {
		parent, _ := plugin.Default.Parent(name)
		plugins = append(plugins, PluginInfo{Name: name, Parent: parent})
	}
	writeJSON(w, http.StatusOK, plugins)
}

// loadScene loads the scene file named by the "scene" query parameter.
// Names are file stems inside the scenes directory.
func (s *Server) loadScene(values url.Values) (*scene.Scene, error) {
	name := values.Get("scene")
	if name == "" {
		return nil, fmt.Errorf("missing scene parameter")
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("invalid scene name: %s", name)
	}
	return loaders.LoadScene(filepath.Join(s.scenesDir, name+".yaml"), loaders.Options{Variant: s.variant})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
