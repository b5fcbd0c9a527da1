package edit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/nexuspro/nexus-render/internal/assets"
	"github.com/nexuspro/nexus-render/internal/logging"
)

// Resolver maps an asset identifier to its storage location. Implementations
// report unknown identifiers with an error wrapping assets.ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, id string) (string, error)
}

type Normalizer struct {
	resolver Resolver
	logger   *slog.Logger
}

func NewNormalizer(resolver Resolver, logger *slog.Logger) *Normalizer {
	return &Normalizer{resolver: resolver, logger: logging.WithComponent(logger, "normalizer")}
}

// Normalize validates raw and applies defaults. The only error it returns for
// bad input is an *InputNotFoundError; cosmetic problems are absorbed.
func (n *Normalizer) Normalize(ctx context.Context, raw Raw) (Request, error) {
	primaryID, _ := str(raw[KeyInputFile])
	if primaryID == "" {
		return Request{}, &InputNotFoundError{}
	}

	primaryPath, err := n.resolver.Resolve(ctx, primaryID)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return Request{}, &InputNotFoundError{AssetID: primaryID, Err: err}
		}
		return Request{}, fmt.Errorf("resolve input %s: %w", primaryID, err)
	}

	req := Request{
		PrimaryID:   primaryID,
		PrimaryPath: primaryPath,
		TrimStart:   n.nonNegative(raw, KeyTrimStart, DefaultTrimStart),
		TrimEnd:     n.optionalNumber(raw, KeyTrimEnd),
	}

	if text, ok := n.text(raw); ok {
		req.Text = &TextOverlay{
			Text: EscapeText(text),
			X:    n.numberOr(raw, KeyTextX, DefaultTextX),
			Y:    n.numberOr(raw, KeyTextY, DefaultTextY),
			Size: n.positive(raw, KeyFontSize, DefaultFontSize),
		}
	}

	if img, ok := n.overlay(ctx, raw); ok {
		req.Image = img
	}

	return req, nil
}

func (n *Normalizer) text(raw Raw) (string, bool) {
	v, present := raw[KeyText]
	if !present || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		n.soft(KeyText, v, "not a string; text stage disabled")
		return "", false
	}
	// Blank text disables the stage; otherwise it is drawn as sent.
	return s, strings.TrimSpace(s) != ""
}

func (n *Normalizer) overlay(ctx context.Context, raw Raw) (*ImageOverlay, bool) {
	v, present := raw[KeyImageOverlay]
	if !present || v == nil {
		return nil, false
	}
	id, ok := str(v)
	if !ok || id == "" {
		return nil, false
	}

	path, err := n.resolver.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			n.soft(KeyImageOverlay, id, "overlay asset not found; image stage disabled")
		} else {
			n.logger.Warn("overlay lookup failed; image stage disabled", "asset_id", id, "error", err)
		}
		return nil, false
	}

	return &ImageOverlay{
		AssetID: id,
		Path:    path,
		X:       n.numberOr(raw, KeyImageX, DefaultImageX),
		Y:       n.numberOr(raw, KeyImageY, DefaultImageY),
	}, true
}

func (n *Normalizer) numberOr(raw Raw, key string, def float64) float64 {
	v, present := raw[key]
	if !present || v == nil {
		return def
	}
	f, ok := number(v)
	if !ok {
		n.soft(key, v, "not a finite number; using default")
		return def
	}
	return f
}

func (n *Normalizer) nonNegative(raw Raw, key string, def float64) float64 {
	f := n.numberOr(raw, key, def)
	if f < 0 {
		n.soft(key, f, "negative; using default")
		return def
	}
	return f
}

func (n *Normalizer) positive(raw Raw, key string, def float64) float64 {
	f := n.numberOr(raw, key, def)
	if f <= 0 {
		n.soft(key, f, "not positive; using default")
		return def
	}
	return f
}

func (n *Normalizer) optionalNumber(raw Raw, key string) *float64 {
	v, present := raw[key]
	if !present || v == nil {
		return nil
	}
	f, ok := number(v)
	if !ok {
		n.soft(key, v, "not a finite number; treated as absent")
		return nil
	}
	return &f
}

func (n *Normalizer) soft(field string, value any, reason string) {
	n.logger.Debug("validation soft failure",
		"field", field,
		"value", truncateValue(value),
		"reason", reason,
	)
}

const maxLoggedValue = 64

func truncateValue(v any) string {
	s := fmt.Sprint(v)
	s = strings.ReplaceAll(s, "\n", " ")
	if utf8.RuneCountInString(s) <= maxLoggedValue {
		return s
	}
	return string([]rune(s)[:maxLoggedValue]) + "..."
}
