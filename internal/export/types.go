// Package export turns an untrusted edit description into a finished render:
// normalize, compile, execute.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nexuspro/nexus-render/internal/artifacts"
	"github.com/nexuspro/nexus-render/internal/edit"
)

// Result describes a successful export.
type Result struct {
	OutputID   string
	OutputFile string
	Artifact   *artifacts.Artifact
}

// DecodeRaw reads one JSON object. Numbers are kept as json.Number so the
// normalizer sees exactly what the client sent.
func DecodeRaw(r io.Reader) (edit.Raw, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw edit.Raw
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode export request: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode export request: body must be a JSON object")
	}
	return raw, nil
}
