package render

import (
	"fmt"
	"strconv"
	"strings"
)

const outputLabel = "vout"

// Args renders p as an ffmpeg argument vector writing to dest.
func Args(p Pipeline, dest string) []string {
	args := []string{"-hide_banner", "-nostdin", "-y"}

	for i, in := range p.Inputs() {
		// Seeking is an input option on the primary only.
		if i == 0 {
			args = append(args, "-ss", formatNumber(p.Clip.Start))
		}
		args = append(args, "-i", in)
	}

	if p.Clip.Bounded() {
		args = append(args, "-t", formatNumber(*p.Clip.Duration))
	}

	if p.HasFilterGraph() {
		args = append(args,
			"-filter_complex", FilterGraph(p),
			"-map", "["+outputLabel+"]",
			"-map", "0:a?",
		)
	}

	args = append(args, p.Encode.Args()...)
	return append(args, dest)
}

// Args renders the encoder settings as output options.
func (e EncodeProfile) Args() []string {
	return []string{
		"-c:v", e.VideoCodec,
		"-preset", e.Preset,
		"-crf", strconv.Itoa(e.CRF),
		"-pix_fmt", e.PixelFormat,
		"-movflags", e.MovFlags,
		"-r", strconv.Itoa(e.FrameRate),
		"-b:v", e.VideoBitrate,
	}
}

// FilterGraph chains the stages with explicit pad labels, starting from the
// primary video stream. It returns "" when there are no stages; an empty
// graph is never passed to the engine.
func FilterGraph(p Pipeline) string {
	if len(p.Stages) == 0 {
		return ""
	}

	chains := make([]string, 0, len(p.Stages))
	in := "0:v"
	for i, st := range p.Stages {
		out := fmt.Sprintf("v%d", i)
		if i == len(p.Stages)-1 {
			out = outputLabel
		}

		switch s := st.(type) {
		case TextDraw:
			chains = append(chains, fmt.Sprintf("[%s]%s[%s]", in, s.filter(), out))
		case ImageComposite:
			chains = append(chains, fmt.Sprintf("[%s][%d:v]%s[%s]", in, s.Input, s.filter(), out))
		default:
			continue
		}
		in = out
	}
	return strings.Join(chains, ";")
}

func (s TextDraw) filter() string {
	opts := []string{
		"text=" + quoteGraphValue(s.Text),
		"fontcolor=" + s.Style.FontColor,
		"fontsize=" + formatNumber(s.Size),
		"x=" + formatNumber(s.X),
		"y=" + formatNumber(s.Y),
	}
	if s.Style.Box {
		opts = append(opts,
			"box=1",
			"boxcolor="+s.Style.BoxColor,
			"boxborderw="+strconv.Itoa(s.Style.BoxBorderWidth),
		)
	}
	return string(StageTextDraw) + "=" + strings.Join(opts, ":")
}

func (s ImageComposite) filter() string {
	return fmt.Sprintf("%s=x=%s:y=%s", StageImageComposite, formatNumber(s.X), formatNumber(s.Y))
}

// quoteGraphValue single-quotes v for the filter-graph parser so that
// separators inside the text ("," ";" "[" "]") stay literal and the option
// level still sees the escaped colons. Apostrophes close the quote, pass
// through escaped for both levels, and reopen it.
func quoteGraphValue(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\\\''`) + "'"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
