// Package render compiles a normalized edit request into a Pipeline: the
// complete, ordered description of one media engine job.
package render

// Pipeline is produced by Compile and never modified afterwards.
type Pipeline struct {
	// OutputID names the artifact this pipeline will produce. It is generated
	// per compile and has no relation to any input identifier.
	OutputID string
	// SourceID is the asset id of the primary input.
	SourceID string
	// Primary is the storage location of input 0.
	Primary string
	// Secondary holds inputs 1..n. Only the overlay image is ever registered.
	Secondary []string
	Clip      ClipWindow
	Stages    []Stage
	Encode    EncodeProfile
}

// Inputs returns every input location in engine order.
func (p Pipeline) Inputs() []string {
	out := make([]string, 0, 1+len(p.Secondary))
	out = append(out, p.Primary)
	return append(out, p.Secondary...)
}

// HasFilterGraph reports whether any filter stage must run.
func (p Pipeline) HasFilterGraph() bool {
	return len(p.Stages) > 0
}

// ClipWindow selects the rendered sub-range of the primary input.
type ClipWindow struct {
	Start float64
	// Duration is nil when rendering runs to the end of the source.
	Duration *float64
}

func (c ClipWindow) Bounded() bool {
	return c.Duration != nil
}

// StageKind tags a Stage variant.
type StageKind string

const (
	StageTextDraw       StageKind = "drawtext"
	StageImageComposite StageKind = "overlay"
)

// Stage is one filter-graph operation. The concrete types are TextDraw and
// ImageComposite.
type Stage interface {
	Kind() StageKind
}

// TextStyle is the fixed look of drawn text.
type TextStyle struct {
	FontColor      string
	Box            bool
	BoxColor       string
	BoxBorderWidth int
}

// TextDraw draws Text (already colon-escaped) at X,Y.
type TextDraw struct {
	Text  string
	X     float64
	Y     float64
	Size  float64
	Style TextStyle
}

func (TextDraw) Kind() StageKind { return StageTextDraw }

// ImageComposite overlays input Input (an index into Pipeline.Inputs) at X,Y.
type ImageComposite struct {
	Input int
	X     float64
	Y     float64
}

func (ImageComposite) Kind() StageKind { return StageImageComposite }

// EncodeProfile holds the output encoder settings.
type EncodeProfile struct {
	VideoCodec   string
	Preset       string
	CRF          int
	PixelFormat  string
	MovFlags     string
	FrameRate    int
	VideoBitrate string
}

// readabilityBox is the text style every TextDraw stage carries. It is a
// product decision and deliberately not exposed as a request field.
func readabilityBox() TextStyle {
	return TextStyle{
		FontColor:      "white",
		Box:            true,
		BoxColor:       "black@0.5",
		BoxBorderWidth: 10,
	}
}

// HighQuality is the only encode profile. Every render trades encode time
// for quality: slowest x264 preset, CRF 18, yuv420p for player
// compatibility, moov atom up front, 30 fps, 8 Mb/s ceiling.
func HighQuality() EncodeProfile {
	return EncodeProfile{
		VideoCodec:   "libx264",
		Preset:       "veryslow",
		CRF:          18,
		PixelFormat:  "yuv420p",
		MovFlags:     "+faststart",
		FrameRate:    30,
		VideoBitrate: "8000k",
	}
}
