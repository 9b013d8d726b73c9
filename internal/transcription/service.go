package transcription

import (
	"context"
	"strings"
	"time"

	"lingoflow/internal/asr"
	"lingoflow/internal/lang"
)

// ModelSource hands out loaded model handles; in production this is the
// asr.Registry.
type ModelSource interface {
	GetOrLoad(ctx context.Context, tier lang.QualityTier) (asr.Handle, error)
}

// Result is one transcription: the recognized text (possibly empty) and the
// language the backend detected or was constrained to.
type Result struct {
	Text     string
	Language string
}

type Service struct {
	models  ModelSource
	timeout time.Duration
}

func New(models ModelSource, timeout time.Duration) *Service {
	return &Service{models: models, timeout: timeout}
}

// Transcribe runs inference for audioPath on the tier's model. When
// forcedLanguage is the auto sentinel the backend detects the spoken
// language; a concrete code constrains decoding and is echoed back in the
// result regardless of what the backend reports.
func (s *Service) Transcribe(ctx context.Context, audioPath string, tier lang.QualityTier, forcedLanguage string) (Result, error) {
	handle, err := s.models.GetOrLoad(ctx, tier)
	if err != nil {
		return Result{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := asr.InferOptions{DisableHalfPrecision: true}
	forced := forcedLanguage != "" && forcedLanguage != lang.Auto
	if forced {
		opts.Language = forcedLanguage
	}

	inferred, err := handle.Infer(ctx, audioPath, opts)
	if err != nil {
		return Result{}, err
	}

	result := Result{Text: strings.TrimSpace(inferred.Text), Language: inferred.Language}
	if forced {
		result.Language = forcedLanguage
	}
	return result, nil
}
