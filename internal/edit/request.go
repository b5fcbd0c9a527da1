// Package edit turns the untrusted, flat export payload into a typed and
// bounded Request.
//
// Validation is two-tier. The primary input is the only hard requirement: if
// it does not resolve the whole export is rejected. Every other field is
// cosmetic and falls back to its default (or disables its stage) when it
// cannot be coerced.
package edit

import (
	"errors"
	"fmt"
)

// Defaults applied when a cosmetic field is missing or unusable.
const (
	DefaultTrimStart = 0
	DefaultTextX     = 50
	DefaultTextY     = 50
	DefaultFontSize  = 40
	DefaultImageX    = 100
	DefaultImageY    = 100
)

// Payload keys, as sent by the editor front end.
const (
	KeyInputFile    = "inputFile"
	KeyTrimStart    = "trimStart"
	KeyTrimEnd      = "trimEnd"
	KeyText         = "text"
	KeyTextX        = "textX"
	KeyTextY        = "textY"
	KeyFontSize     = "fontSize"
	KeyImageOverlay = "imageOverlay"
	KeyImageX       = "imageX"
	KeyImageY       = "imageY"
)

// Raw is the export payload exactly as decoded from the transport.
type Raw map[string]any

// Request is a normalized export request. It is a value; nothing downstream
// mutates it.
type Request struct {
	PrimaryID   string
	PrimaryPath string
	TrimStart   float64
	// TrimEnd is nil when the render runs to the end of the source.
	TrimEnd *float64
	// Text is nil when no text overlay was requested.
	Text *TextOverlay
	// Image is nil when no overlay was requested or the overlay asset did not resolve.
	Image *ImageOverlay
}

// TextOverlay carries text that has already been escaped for the filter graph.
type TextOverlay struct {
	Text string
	X    float64
	Y    float64
	Size float64
}

type ImageOverlay struct {
	AssetID string
	Path    string
	X       float64
	Y       float64
}

// ErrInputNotFound is the single hard validation failure.
var ErrInputNotFound = errors.New("input file not found")

// InputNotFoundError reports which primary asset failed to resolve.
type InputNotFoundError struct {
	AssetID string
	Err     error
}

func (e *InputNotFoundError) Error() string {
	if e.AssetID == "" {
		return ErrInputNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInputNotFound, e.AssetID)
}

func (e *InputNotFoundError) Is(target error) bool {
	return target == ErrInputNotFound
}

func (e *InputNotFoundError) Unwrap() error {
	return e.Err
}
