package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mkarlsen/sunwheel/pkg/chart"
	"github.com/mkarlsen/sunwheel/pkg/errors"
	"github.com/mkarlsen/sunwheel/pkg/hierarchy"
	"github.com/mkarlsen/sunwheel/pkg/pipeline"
	"github.com/mkarlsen/sunwheel/pkg/sunburst"
)

// renderResponse is the body of a successful POST /v1/render.
// Artifact bytes are base64-encoded by the JSON marshaller.
type renderResponse struct {
	DatasetHash string             `json:"dataset_hash"`
	Layout      chart.Layout       `json:"layout"`
	Artifacts   map[string][]byte  `json:"artifacts"`
	Cache       pipeline.CacheInfo `json:"cache"`
}

// handleRender runs the full pipeline for an inline dataset.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeBody(w, r, &opts); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if opts.Dataset == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "dataset is required"))
		return
	}
	// File paths would read from the server host; only inline datasets are
	// accepted over HTTP.
	opts.RecordsPath = ""
	opts.RulesPath = ""
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		DatasetHash: result.DatasetHash,
		Layout:      result.Layout,
		Artifacts:   result.Artifacts,
		Cache:       result.CacheInfo,
	})
}

// focusRequest is the body of POST /v1/focus.
type focusRequest struct {
	Dataset   *hierarchy.Raw `json:"dataset"`
	RingWidth float64        `json:"ring_width,omitempty"`
	MaxRadius float64        `json:"max_radius,omitempty"`

	// From optionally re-establishes a prior focus before computing the
	// transition, so Current extents in the plan reflect the client's view.
	From []string `json:"from,omitempty"`

	// Path is the node to focus on.
	Path []string `json:"path"`

	// Apply additionally commits the plan and returns the zoomed layout.
	Apply bool `json:"apply,omitempty"`
}

// focusResponse is the body of a successful POST /v1/focus.
type focusResponse struct {
	Plan   json.RawMessage `json:"plan"`
	Layout *chart.Layout   `json:"layout,omitempty"`
}

// handleFocus computes a zoom transition for an inline dataset.
func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	var req focusRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}
	if req.Dataset == nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "dataset is required"))
		return
	}
	if len(req.Path) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "path is required"))
		return
	}

	ctrl, err := sunburst.Build(req.Dataset, sunburst.Config{
		RingWidth: req.RingWidth,
		MaxRadius: req.MaxRadius,
	})
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidTree, err, "invalid dataset"))
		return
	}

	if len(req.From) > 0 {
		if err := focusAndApply(ctrl, req.From); err != nil {
			writeError(w, err)
			return
		}
	}

	node, ok := ctrl.Tree().Find(req.Path...)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnknownNode,
			"no node at path %q", strings.Join(req.Path, "/")))
		return
	}

	plan, err := ctrl.FocusOn(node)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "compute focus"))
		return
	}

	planJSON, err := plan.MarshalJSON()
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "serialize plan"))
		return
	}

	resp := focusResponse{Plan: planJSON}
	if req.Apply {
		if err := ctrl.Apply(plan); err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "apply plan"))
			return
		}
		zoomed := chart.FromController(ctrl)
		resp.Layout = &zoomed
	}

	writeJSON(w, http.StatusOK, resp)
}

// focusAndApply moves the controller to the node at path and commits it.
func focusAndApply(ctrl *sunburst.Controller, path []string) error {
	node, ok := ctrl.Tree().Find(path...)
	if !ok {
		return errors.New(errors.ErrCodeUnknownNode,
			"no node at path %q", strings.Join(path, "/"))
	}
	plan, err := ctrl.FocusOn(node)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "compute focus")
	}
	return ctrl.Apply(plan)
}

// decodeBody decodes a JSON body with a size cap and strict field checking.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeError maps structured error codes to HTTP statuses and emits a
// machine-readable error body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidTree, errors.ErrCodeInvalidRules,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle, errors.ErrCodeInvalidVizType,
		errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeUnknownNode, errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		status = http.StatusBadGateway
	}

	body := map[string]string{"error": errors.UserMessage(err)}
	if code := errors.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}
