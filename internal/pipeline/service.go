// Package pipeline composes resolution, transcription, and translation into
// the end-to-end audio processing run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lingoflow/internal/lang"
	"lingoflow/internal/transcription"
	"lingoflow/internal/translate"
)

var ErrMissingAudio = errors.New("no audio file was supplied")

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string, tier lang.QualityTier, forcedLanguage string) (transcription.Result, error)
}

type Translator interface {
	Translate(ctx context.Context, text, source, target string) translate.Outcome
}

type Service struct {
	transcriber Transcriber
	translator  Translator
}

// Input carries one run's audio reference and the user's label selections.
type Input struct {
	AudioPath      string
	Quality        string
	SourceLanguage string
	TargetLanguage string
	Translate      bool
}

type Timings struct {
	Transcription time.Duration
	Translation   time.Duration
	Total         time.Duration
}

// Result is the only thing a run produces. Process never returns an error:
// failures land in Failure with the other fields empty, so callers always
// have a renderable result.
type Result struct {
	Transcript            string
	DetectedLanguage      string
	DetectedLanguageLabel string
	Translation           string
	TranslationProvider   string
	Info                  string
	Failure               string
	Timings               Timings
}

func New(transcriber Transcriber, translator Translator) *Service {
	return &Service{transcriber: transcriber, translator: translator}
}

// Process runs validate → resolve → transcribe → translate → assemble.
// Transcription is the primary deliverable: a transcription failure is
// terminal for the run, a translation failure only marks the translation
// field.
func (s *Service) Process(ctx context.Context, in Input) Result {
	started := time.Now()

	if in.AudioPath == "" {
		return failure(ErrMissingAudio.Error(), started)
	}

	tier, ok := lang.TierForQuality(in.Quality)
	if !ok {
		return failure(fmt.Sprintf("unknown quality level %q", in.Quality), started)
	}
	sourceCode, ok := lang.SourceCode(in.SourceLanguage)
	if !ok {
		return failure(fmt.Sprintf("unknown source language %q", in.SourceLanguage), started)
	}
	targetCode, ok := lang.TargetCode(in.TargetLanguage)
	if !ok {
		return failure(fmt.Sprintf("unknown target language %q", in.TargetLanguage), started)
	}

	transcriptionStarted := time.Now()
	transcribed, err := s.transcriber.Transcribe(ctx, in.AudioPath, tier, sourceCode)
	transcriptionDuration := time.Since(transcriptionStarted)
	if err != nil {
		res := failure("transcription failed: "+err.Error(), started)
		res.Timings.Transcription = transcriptionDuration
		return res
	}

	detectedLabel := lang.LabelForCode(transcribed.Language)
	result := Result{
		Transcript:            transcribed.Text,
		DetectedLanguage:      transcribed.Language,
		DetectedLanguageLabel: detectedLabel,
		TranslationProvider:   translate.ProviderNone,
		Timings:               Timings{Transcription: transcriptionDuration},
	}

	info := "detected language: " + detectedLabel
	if !in.Translate {
		result.Info = info + "; translation not requested"
		result.Timings.Total = time.Since(started)
		return result
	}

	translationStarted := time.Now()
	outcome := s.translator.Translate(ctx, transcribed.Text, transcribed.Language, targetCode)
	result.Timings.Translation = time.Since(translationStarted)
	result.TranslationProvider = outcome.Provider

	switch {
	case outcome.Provider == translate.ProviderError:
		result.Translation = "translation failed: " + outcome.Err.Error()
		result.Info = info + "; translation failed"
	case outcome.Provider == translate.ProviderNone && result.Transcript == "":
		result.Info = info + "; nothing to translate"
	case outcome.Provider == translate.ProviderNone:
		result.Translation = outcome.Text
		result.Info = info + "; already in target language"
	default:
		result.Translation = outcome.Text
		result.Info = info + "; translated via " + outcome.Provider
	}

	result.Timings.Total = time.Since(started)
	return result
}

func failure(message string, started time.Time) Result {
	return Result{
		Failure: message,
		Info:    "processing failed: " + message,
		Timings: Timings{Total: time.Since(started)},
	}
}
