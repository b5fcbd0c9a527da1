package edit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuspro/nexus-render/internal/assets"
)

type mapResolver map[string]string

func (m mapResolver) Resolve(ctx context.Context, id string) (string, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %s", assets.ErrNotFound, id)
}

type failingResolver struct{ err error }

func (f failingResolver) Resolve(ctx context.Context, id string) (string, error) {
	return "", f.err
}

func testResolver() mapResolver {
	return mapResolver{
		"v1":   "/data/uploads/v1.mp4",
		"img1": "/data/uploads/img1.png",
	}
}

func decode(t *testing.T, payload string) Raw {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var raw Raw
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func normalize(t *testing.T, payload string) (Request, error) {
	t.Helper()
	return NewNormalizer(testResolver(), nil).Normalize(context.Background(), decode(t, payload))
}

func TestNormalize_Defaults(t *testing.T) {
	req, err := normalize(t, `{"inputFile":"v1"}`)
	require.NoError(t, err)

	assert.Equal(t, "v1", req.PrimaryID)
	assert.Equal(t, "/data/uploads/v1.mp4", req.PrimaryPath)
	assert.Equal(t, 0.0, req.TrimStart)
	assert.Nil(t, req.TrimEnd)
	assert.Nil(t, req.Text)
	assert.Nil(t, req.Image)
}

func TestNormalize_PrimaryMissing(t *testing.T) {
	for _, payload := range []string{`{}`, `{"inputFile":""}`, `{"inputFile":"   "}`, `{"inputFile":42}`, `{"inputFile":"nope"}`} {
		_, err := normalize(t, payload)
		require.Error(t, err, payload)
		assert.True(t, errors.Is(err, ErrInputNotFound), "%s: %v", payload, err)
	}
}

func TestNormalize_PrimaryCarriesAssetID(t *testing.T) {
	_, err := normalize(t, `{"inputFile":"nope"}`)

	var nf *InputNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nope", nf.AssetID)
	assert.True(t, errors.Is(err, assets.ErrNotFound))
}

func TestNormalize_ResolverFailureIsNotInputNotFound(t *testing.T) {
	boom := errors.New("database is locked")
	_, err := NewNormalizer(failingResolver{err: boom}, nil).Normalize(context.Background(), Raw{KeyInputFile: "v1"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInputNotFound))
	assert.True(t, errors.Is(err, boom))
}

func TestNormalize_NumericCoercion(t *testing.T) {
	req, err := normalize(t, `{"inputFile":"v1","trimStart":"2.5","trimEnd":" 10 ","text":"hi","textX":"12","textY":7,"fontSize":"30"}`)
	require.NoError(t, err)

	assert.Equal(t, 2.5, req.TrimStart)
	require.NotNil(t, req.TrimEnd)
	assert.Equal(t, 10.0, *req.TrimEnd)
	require.NotNil(t, req.Text)
	assert.Equal(t, 12.0, req.Text.X)
	assert.Equal(t, 7.0, req.Text.Y)
	assert.Equal(t, 30.0, req.Text.Size)
}

func TestNormalize_SoftFailuresFallBack(t *testing.T) {
	req, err := normalize(t, `{"inputFile":"v1","trimStart":"abc","trimEnd":"later","text":"hi","textX":{},"textY":true,"fontSize":-3,"imageOverlay":"img1","imageX":"left","imageY":null}`)
	require.NoError(t, err)

	assert.Equal(t, 0.0, req.TrimStart)
	assert.Nil(t, req.TrimEnd)
	require.NotNil(t, req.Text)
	assert.Equal(t, float64(DefaultTextX), req.Text.X)
	assert.Equal(t, float64(DefaultTextY), req.Text.Y)
	assert.Equal(t, float64(DefaultFontSize), req.Text.Size)
	require.NotNil(t, req.Image)
	assert.Equal(t, float64(DefaultImageX), req.Image.X)
	assert.Equal(t, float64(DefaultImageY), req.Image.Y)
}

func TestNormalize_NegativeTrimStartDefaults(t *testing.T) {
	req, err := normalize(t, `{"inputFile":"v1","trimStart":-4}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, req.TrimStart)
}

func TestNormalize_NonFiniteNumbers(t *testing.T) {
	raw := Raw{KeyInputFile: "v1", KeyTrimStart: math.Inf(1), KeyTrimEnd: "NaN", KeyText: "x", KeyFontSize: "Inf"}
	req, err := NewNormalizer(testResolver(), nil).Normalize(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, 0.0, req.TrimStart)
	assert.Nil(t, req.TrimEnd)
	assert.Equal(t, float64(DefaultFontSize), req.Text.Size)
}

func TestNormalize_WhitespaceTextDisablesStage(t *testing.T) {
	for _, payload := range []string{
		`{"inputFile":"v1","text":""}`,
		`{"inputFile":"v1","text":"   \t\n"}`,
		`{"inputFile":"v1","text":12}`,
		`{"inputFile":"v1","text":null}`,
	} {
		req, err := normalize(t, payload)
		require.NoError(t, err)
		assert.Nil(t, req.Text, payload)
	}
}

func TestNormalize_TextKeepsSurroundingSpaces(t *testing.T) {
	req, err := normalize(t, `{"inputFile":"v1","text":"  A:B  "}`)
	require.NoError(t, err)
	require.NotNil(t, req.Text)
	assert.Equal(t, `  A\:B  `, req.Text.Text)

	req, err = normalize(t, `{"inputFile":"v1","text":"  Hi  "}`)
	require.NoError(t, err)
	require.NotNil(t, req.Text)
	assert.Equal(t, "  Hi  ", req.Text.Text)
}

func TestNormalize_TextBackslashesSurvive(t *testing.T) {
	req, err := normalize(t, `{"inputFile":"v1","text":"C:\\temp\\x"}`)
	require.NoError(t, err)
	require.NotNil(t, req.Text)
	assert.Equal(t, `C\:\\temp\\x`, req.Text.Text)
}

func TestNormalize_OverlayUnresolvedIsSilent(t *testing.T) {
	req, err := normalize(t, `{"inputFile":"v1","imageOverlay":"missing","imageX":5}`)
	require.NoError(t, err)
	assert.Nil(t, req.Image)
}

func TestNormalize_OverlayResolved(t *testing.T) {
	req, err := normalize(t, `{"inputFile":"v1","imageOverlay":"img1","imageX":5,"imageY":"6"}`)
	require.NoError(t, err)
	require.NotNil(t, req.Image)
	assert.Equal(t, ImageOverlay{AssetID: "img1", Path: "/data/uploads/img1.png", X: 5, Y: 6}, *req.Image)
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in, want string
		stable   bool
	}{
		{"HELLO", "HELLO", true},
		{"A:B", `A\:B`, true},
		{"12:30:45", `12\:30\:45`, true},
		{`A\:B`, `A\:B`, true},
		{"::", `\:\:`, true},
		{`C:\temp\x`, `C\:\\temp\\x`, false},
		{`path\\:x`, `path\\\:x`, false},
		{`trailing\`, `trailing\\`, false},
	}
	for _, tt := range tests {
		got := EscapeText(tt.in)
		assert.Equal(t, tt.want, got, "EscapeText(%q)", tt.in)
		if tt.stable {
			assert.Equal(t, got, EscapeText(got), "escaping %q twice changed it", tt.in)
		}
	}
}

func TestTruncateValue_RuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 70)
	got := truncateValue(long)
	assert.True(t, utf8.ValidString(got), "truncated value is not valid UTF-8: %q", got)
	assert.Equal(t, strings.Repeat("é", 64)+"...", got)
	assert.Equal(t, "short", truncateValue("short"))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{json.Number("3.5"), 3.5, true},
		{float64(2), 2, true},
		{7, 7, true},
		{" 8 ", 8, true},
		{"", 0, false},
		{"1e400", 0, false},
		{true, 0, false},
		{nil, 0, false},
		{[]any{1}, 0, false},
	}
	for _, tt := range tests {
		got, ok := number(tt.in)
		assert.Equal(t, tt.ok, ok, "number(%#v)", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got)
		}
	}
}
