package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-plugin-renderer/pkg/core"
	"github.com/df07/go-plugin-renderer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool       `json:"hit"`
	Valid        bool       `json:"valid"` // Whether the sensor produced a ray
	RayOrigin    [3]float64 `json:"rayOrigin"`
	RayDirection [3]float64 `json:"rayDirection"`
	Weight       [3]float64 `json:"weight"`
	ShapeType    string     `json:"shapeType,omitempty"`
	ShapeID      string     `json:"shapeId,omitempty"`
	BSDFType     string     `json:"bsdfType,omitempty"`
	BSDFFlags    string     `json:"bsdfFlags,omitempty"`
	EmitterType  string     `json:"emitterType,omitempty"`
	Point        [3]float64 `json:"point"`
	Normal       [3]float64 `json:"normal"`
	Distance     float64    `json:"distance"`
	FrontFace    bool       `json:"frontFace"`
}

func vec(v core.Vec3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// inspectPixel samples the sensor ray through the center of a pixel and
// describes the first surface it hits
func inspectPixel(sc *scene.Scene, sensorIndex, pixelX, pixelY int) (InspectResponse, error) {
	if sensorIndex >= len(sc.Sensors()) {
		return InspectResponse{}, fmt.Errorf("scene has %d sensor(s), cannot inspect sensor %d", len(sc.Sensors()), sensorIndex)
	}
	sens := sc.Sensors()[sensorIndex]
	film := sens.Film()
	if pixelX < 0 || pixelX >= film.Width || pixelY < 0 || pixelY >= film.Height {
		return InspectResponse{}, fmt.Errorf("pixel coordinates out of bounds")
	}

	// No jitter for inspection
	filmSample := core.NewVec2((float64(pixelX)+0.5)/float64(film.Width), (float64(pixelY)+0.5)/float64(film.Height))
	ray, weight, ok := sens.SampleRay(0, 0.5, filmSample, core.NewVec2(0.5, 0.5), true)
	resp := InspectResponse{Valid: ok, RayOrigin: vec(ray.Origin), RayDirection: vec(ray.Direction), Weight: vec(weight)}
	if !ok {
		return resp, nil
	}

	si, shape := sc.Intersect(ray, true)
	if !si.IsValid() {
		return resp, nil
	}
	resp.Hit = true
	resp.ShapeType = shape.Class().Name()
	resp.ShapeID = shape.ID()
	resp.BSDFType = shape.BSDF().Class().Name()
	resp.BSDFFlags = shape.BSDF().Flags().String()
	if shape.Emitter() != nil {
		resp.EmitterType = shape.Emitter().Class().Name()
	}
	resp.Point = vec(si.P)
	resp.Normal = vec(si.N)
	resp.Distance = si.T
	resp.FrontFace = si.Wi.Z > 0
	return resp, nil
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	sc, err := s.loadScene(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Parse pixel coordinates
	pixelX, err := parseIntParam(values, "x", -1, 0, 1<<20)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pixelY, err := parseIntParam(values, "y", -1, 0, 1<<20)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sensorIndex, err := parseIntParam(values, "sensor", 0, 0, 1000)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := inspectPixel(sc, sensorIndex, pixelX, pixelY)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
