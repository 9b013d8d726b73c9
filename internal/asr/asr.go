// Package asr defines the speech-to-text backend contracts and the
// tier-keyed model registry in front of them.
package asr

import (
	"context"
	"fmt"

	"lingoflow/internal/lang"
)

// Backend constructs model handles. Load may take several seconds for a cold
// model; callers go through the Registry so that cost is paid once per tier.
type Backend interface {
	Load(ctx context.Context, modelID string) (Handle, error)
}

// Handle is a loaded model bound to one tier. Implementations must be safe
// for concurrent Infer calls; the whisperapi backend satisfies this because
// each call is an independent HTTP request and the server owns per-model
// decode serialization.
type Handle interface {
	Infer(ctx context.Context, audioPath string, opts InferOptions) (InferResult, error)
}

// InferOptions configures one inference call.
type InferOptions struct {
	// Language constrains decoding to a concrete code; empty means the
	// backend detects the spoken language.
	Language string
	// DisableHalfPrecision is always set by callers for deterministic
	// output across hardware.
	DisableHalfPrecision bool
}

// InferResult is the backend's transcript plus the language it used.
type InferResult struct {
	Text     string
	Language string
}

// ModelLoadError reports a failed model construction for a tier.
type ModelLoadError struct {
	Tier    lang.QualityTier
	ModelID string
	Err     error
}

func (e *ModelLoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("load model %q (tier %s) failed", e.ModelID, e.Tier)
	}
	return fmt.Sprintf("load model %q (tier %s): %v", e.ModelID, e.Tier, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// AudioDecodeError reports audio the backend could not decode.
type AudioDecodeError struct {
	Path string
	Err  error
}

func (e *AudioDecodeError) Error() string {
	return fmt.Sprintf("decode audio %q: %v", e.Path, e.Err)
}

func (e *AudioDecodeError) Unwrap() error { return e.Err }
