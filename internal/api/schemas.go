package api

import (
	"time"

	"github.com/nexuspro/nexus-render/internal/assets"
	"github.com/nexuspro/nexus-render/internal/engine"
	"github.com/nexuspro/nexus-render/internal/export"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeInputNotFound   = "INPUT_NOT_FOUND"
	CodeExecutionFailed = "EXECUTION_FAILED"
	CodeNotFound        = "NOT_FOUND"
	CodeUnsupportedType = "UNSUPPORTED_TYPE"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeInternal        = "INTERNAL_ERROR"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type UploadResponse struct {
	Success      bool   `json:"success"`
	File         string `json:"file"`
	Kind         string `json:"kind"`
	OriginalName string `json:"originalName,omitempty"`
	Size         int64  `json:"size"`
}

type ExportResponse struct {
	Success    bool   `json:"success"`
	OutputFile string `json:"outputFile"`
	OutputID   string `json:"outputId"`
}

type HealthResponse struct {
	Status  string          `json:"status"`
	Version string          `json:"version"`
	UptimeS int64           `json:"uptime_s"`
	Engine  *EngineResponse `json:"engine,omitempty"`
}

type EngineResponse struct {
	Version     string `json:"version"`
	Ready       bool   `json:"ready"`
	HasDrawText bool   `json:"has_drawtext"`
	HasOverlay  bool   `json:"has_overlay"`
	HasX264     bool   `json:"has_libx264"`
	LastProbeAt string `json:"last_probe_at,omitempty"`
	Stale       bool   `json:"stale,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

type AssetResponse struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	OriginalName string `json:"original_name,omitempty"`
	Size         int64  `json:"size"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type AssetsResponse struct {
	Assets []AssetResponse `json:"assets"`
}

func UploadToResponse(a *assets.Asset) UploadResponse {
	return UploadResponse{
		Success:      true,
		File:         a.ID,
		Kind:         string(a.Kind),
		OriginalName: a.OriginalName,
		Size:         a.Size,
	}
}

func ExportToResponse(r *export.Result) ExportResponse {
	return ExportResponse{Success: true, OutputFile: r.OutputFile, OutputID: r.OutputID}
}

func AssetToResponse(a *assets.Asset) AssetResponse {
	return AssetResponse{
		ID:           a.ID,
		Kind:         string(a.Kind),
		OriginalName: a.OriginalName,
		Size:         a.Size,
		Width:        a.Width,
		Height:       a.Height,
		CreatedAt:    a.CreatedAt.Format(time.RFC3339),
	}
}

func EngineReportToResponse(r engine.Report) *EngineResponse {
	c := r.Capabilities
	if c == nil {
		return nil
	}
	resp := &EngineResponse{
		Version:     c.Version,
		Ready:       c.Ready(),
		HasDrawText: c.HasDrawText,
		HasOverlay:  c.HasOverlay,
		HasX264:     c.HasX264,
		Stale:       r.Stale,
		LastError:   r.LastError,
	}
	if !c.ProbedAt.IsZero() {
		resp.LastProbeAt = c.ProbedAt.Format(time.RFC3339)
	}
	return resp
}
