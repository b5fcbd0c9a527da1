package render

import (
	"github.com/nexuspro/nexus-render/internal/edit"
	"github.com/nexuspro/nexus-render/internal/ident"
)

// Compile builds the pipeline for req with a freshly generated output id.
// It is pure apart from identifier generation.
func Compile(req edit.Request) Pipeline {
	return compile(req, ident.New())
}

func compile(req edit.Request, outputID string) Pipeline {
	p := Pipeline{
		OutputID: outputID,
		SourceID: req.PrimaryID,
		Primary:  req.PrimaryPath,
		Clip:     clipWindow(req.TrimStart, req.TrimEnd),
		Encode:   HighQuality(),
	}

	if req.Text != nil {
		p.Stages = append(p.Stages, TextDraw{
			Text:  req.Text.Text,
			X:     req.Text.X,
			Y:     req.Text.Y,
			Size:  req.Text.Size,
			Style: readabilityBox(),
		})
	}

	if req.Image != nil {
		p.Secondary = append(p.Secondary, req.Image.Path)
		p.Stages = append(p.Stages, ImageComposite{
			Input: len(p.Secondary),
			X:     req.Image.X,
			Y:     req.Image.Y,
		})
	}

	return p
}

// clipWindow bounds the render only when end-start is strictly positive. A
// missing, equal or earlier end means "to the end of the source".
func clipWindow(start float64, end *float64) ClipWindow {
	w := ClipWindow{Start: start}
	if end != nil {
		if d := *end - start; d > 0 {
			w.Duration = &d
		}
	}
	return w
}
