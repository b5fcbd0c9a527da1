package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuspro/nexus-render/internal/edit"
	"github.com/nexuspro/nexus-render/internal/ident"
)

func ptr(f float64) *float64 { return &f }

func TestCompile_TrimOnly(t *testing.T) {
	p := Compile(edit.Request{
		PrimaryID:   "v1",
		PrimaryPath: "/data/uploads/v1.mp4",
		TrimStart:   2,
		TrimEnd:     ptr(7),
	})

	require.NoError(t, ident.Validate(p.OutputID))
	assert.NotEqual(t, "v1", p.OutputID)
	assert.Equal(t, "v1", p.SourceID)
	assert.Equal(t, "/data/uploads/v1.mp4", p.Primary)
	assert.Empty(t, p.Secondary)
	assert.Empty(t, p.Stages)
	assert.False(t, p.HasFilterGraph())

	assert.Equal(t, 2.0, p.Clip.Start)
	require.True(t, p.Clip.Bounded())
	assert.Equal(t, 5.0, *p.Clip.Duration)
	assert.Equal(t, HighQuality(), p.Encode)
	assert.Equal(t, "", FilterGraph(p))
}

func TestCompile_TextAndImage(t *testing.T) {
	p := compile(edit.Request{
		PrimaryPath: "/in/v1.mp4",
		Text:        &edit.TextOverlay{Text: `Hi\: there`, X: 10, Y: 10, Size: 30},
		Image:       &edit.ImageOverlay{AssetID: "img1", Path: "/in/img1.png", X: 100, Y: 100},
	}, "out-1")

	assert.Equal(t, "out-1", p.OutputID)
	assert.Equal(t, []string{"/in/img1.png"}, p.Secondary)
	assert.Equal(t, []string{"/in/v1.mp4", "/in/img1.png"}, p.Inputs())
	assert.False(t, p.Clip.Bounded())
	assert.Equal(t, 0.0, p.Clip.Start)

	require.Len(t, p.Stages, 2)
	text, ok := p.Stages[0].(TextDraw)
	require.True(t, ok, "first stage must be text")
	assert.Equal(t, `Hi\: there`, text.Text)
	assert.Equal(t, 30.0, text.Size)
	assert.Equal(t, readabilityBox(), text.Style)

	img, ok := p.Stages[1].(ImageComposite)
	require.True(t, ok, "second stage must be image")
	assert.Equal(t, ImageComposite{Input: 1, X: 100, Y: 100}, img)

	assert.Equal(t,
		`[0:v]drawtext=text='Hi\: there':fontcolor=white:fontsize=30:x=10:y=10:box=1:boxcolor=black@0.5:boxborderw=10[v0];`+
			`[v0][1:v]overlay=x=100:y=100[vout]`,
		FilterGraph(p))
}

func TestCompile_ImageOnly(t *testing.T) {
	p := compile(edit.Request{
		PrimaryPath: "/in/v1.mp4",
		Image:       &edit.ImageOverlay{Path: "/in/img1.png", X: 100, Y: 100},
	}, "out-2")

	require.Len(t, p.Stages, 1)
	assert.Equal(t, StageImageComposite, p.Stages[0].Kind())
	assert.Equal(t, "[0:v][1:v]overlay=x=100:y=100[vout]", FilterGraph(p))
}

func TestCompile_NonPositiveWindowIsUnbounded(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		end   *float64
	}{
		{"no end", 3, nil},
		{"end equals start", 5, ptr(5)},
		{"end before start", 5, ptr(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Compile(edit.Request{PrimaryPath: "/in/v.mp4", TrimStart: tt.start, TrimEnd: tt.end})
			assert.False(t, p.Clip.Bounded())
			assert.Equal(t, tt.start, p.Clip.Start)
			assert.NotContains(t, Args(p, "/out/x.mp4"), "-t")
		})
	}
}

func TestCompile_FreshOutputIDs(t *testing.T) {
	req := edit.Request{PrimaryPath: "/in/v.mp4"}
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := Compile(req).OutputID
		assert.False(t, seen[id], "duplicate output id %s", id)
		seen[id] = true
	}
}

func TestArgs_TrimOnly(t *testing.T) {
	p := compile(edit.Request{PrimaryPath: "/in/v1.mp4", TrimStart: 2, TrimEnd: ptr(7)}, "o")

	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-y",
		"-ss", "2", "-i", "/in/v1.mp4",
		"-t", "5",
		"-c:v", "libx264",
		"-preset", "veryslow",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-r", "30",
		"-b:v", "8000k",
		"/out/o.mp4",
	}, Args(p, "/out/o.mp4"))
}

func TestArgs_WithStages(t *testing.T) {
	p := compile(edit.Request{
		PrimaryPath: "/in/v1.mp4",
		TrimStart:   1.5,
		Text:        &edit.TextOverlay{Text: "x", X: 50, Y: 50, Size: 40},
		Image:       &edit.ImageOverlay{Path: "/in/i.png", X: 100, Y: 100},
	}, "o")

	args := Args(p, "/out/o.mp4")
	joined := strings.Join(args, " ")

	assert.True(t, strings.HasPrefix(joined, "-hide_banner -nostdin -y -ss 1.5 -i /in/v1.mp4 -i /in/i.png -filter_complex "))
	assert.Contains(t, joined, " -map [vout] -map 0:a? -c:v libx264 ")
	assert.Equal(t, "/out/o.mp4", args[len(args)-1])
}

func TestQuoteGraphValue(t *testing.T) {
	assert.Equal(t, `'a, b; [c]'`, quoteGraphValue("a, b; [c]"))
	assert.Equal(t, `'it'\\\''s'`, quoteGraphValue("it's"))
	assert.Equal(t, `'10\:30'`, quoteGraphValue(`10\:30`))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "2.5", formatNumber(2.5))
	assert.Equal(t, "100", formatNumber(100))
	assert.Equal(t, "0.333", formatNumber(0.333))
}
