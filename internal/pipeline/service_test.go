package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lingoflow/internal/asr"
	"lingoflow/internal/lang"
	"lingoflow/internal/transcription"
	"lingoflow/internal/translate"
)

type fakeTranscriber struct {
	result     transcription.Result
	err        error
	lastTier   lang.QualityTier
	lastForced string
	calls      int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, tier lang.QualityTier, forced string) (transcription.Result, error) {
	f.calls++
	f.lastTier = tier
	f.lastForced = forced
	return f.result, f.err
}

type fakeTranslator struct {
	outcome    translate.Outcome
	lastText   string
	lastSource string
	lastTarget string
	calls      int
}

func (f *fakeTranslator) Translate(_ context.Context, text, source, target string) translate.Outcome {
	f.calls++
	f.lastText = text
	f.lastSource = source
	f.lastTarget = target
	return f.outcome
}

func validInput() Input {
	return Input{
		AudioPath:      "/tmp/clip.wav",
		Quality:        "Balanced",
		SourceLanguage: "Auto Detect",
		TargetLanguage: "English",
		Translate:      true,
	}
}

func TestProcessMissingAudioNeverPanics(t *testing.T) {
	tr := &fakeTranscriber{}
	svc := New(tr, &fakeTranslator{})

	in := validInput()
	in.AudioPath = ""
	res := svc.Process(context.Background(), in)

	if res.Failure != "no audio file was supplied" {
		t.Fatalf("unexpected failure: %q", res.Failure)
	}
	if res.Transcript != "" || res.Translation != "" {
		t.Fatalf("expected empty transcript/translation, got %+v", res)
	}
	if tr.calls != 0 {
		t.Fatal("transcriber must not run without audio")
	}
}

func TestProcessUnknownLabels(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
		want   string
	}{
		{"quality", func(in *Input) { in.Quality = "Warp Speed" }, `unknown quality level "Warp Speed"`},
		{"source", func(in *Input) { in.SourceLanguage = "Klingon" }, `unknown source language "Klingon"`},
		{"target", func(in *Input) { in.TargetLanguage = "Auto Detect" }, `unknown target language "Auto Detect"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := &fakeTranscriber{}
			svc := New(tr, &fakeTranslator{})
			in := validInput()
			tc.mutate(&in)

			res := svc.Process(context.Background(), in)
			if res.Failure != tc.want {
				t.Fatalf("unexpected failure: %q", res.Failure)
			}
			if tr.calls != 0 {
				t.Fatal("transcriber must not run on bad configuration")
			}
		})
	}
}

func TestProcessTranscriptionFailureIsTerminal(t *testing.T) {
	tr := &fakeTranscriber{err: &asr.AudioDecodeError{Path: "/tmp/clip.wav", Err: errors.New("corrupt header")}}
	translator := &fakeTranslator{}
	svc := New(tr, translator)

	res := svc.Process(context.Background(), validInput())
	if !strings.HasPrefix(res.Failure, "transcription failed:") {
		t.Fatalf("unexpected failure: %q", res.Failure)
	}
	if translator.calls != 0 {
		t.Fatal("translation must not run after a transcription failure")
	}
}

func TestProcessEndToEndFrenchToEnglish(t *testing.T) {
	tr := &fakeTranscriber{result: transcription.Result{Text: "bonjour tout le monde", Language: "fr"}}
	translator := &fakeTranslator{outcome: translate.Outcome{Text: "hello everyone", Provider: "google"}}
	svc := New(tr, translator)

	res := svc.Process(context.Background(), validInput())
	if res.Failure != "" {
		t.Fatalf("unexpected failure: %q", res.Failure)
	}
	if res.Transcript != "bonjour tout le monde" {
		t.Fatalf("unexpected transcript: %q", res.Transcript)
	}
	if res.DetectedLanguage != "fr" || res.DetectedLanguageLabel != "French" {
		t.Fatalf("unexpected detection: %q / %q", res.DetectedLanguage, res.DetectedLanguageLabel)
	}
	if res.Translation != "hello everyone" || res.TranslationProvider != "google" {
		t.Fatalf("unexpected translation: %q via %q", res.Translation, res.TranslationProvider)
	}
	if !strings.Contains(res.Info, "French") || !strings.Contains(res.Info, "google") {
		t.Fatalf("info must name language and provider: %q", res.Info)
	}
	if translator.lastSource != "fr" || translator.lastTarget != "en" {
		t.Fatalf("translation pair was %s->%s", translator.lastSource, translator.lastTarget)
	}
	if tr.lastTier != lang.TierBalanced || tr.lastForced != lang.Auto {
		t.Fatalf("unexpected transcriber args: %q / %q", tr.lastTier, tr.lastForced)
	}
}

func TestProcessAlreadyInTargetLanguage(t *testing.T) {
	tr := &fakeTranscriber{result: transcription.Result{Text: "hello everyone", Language: "en"}}
	translator := &fakeTranslator{outcome: translate.Outcome{Text: "hello everyone", Provider: translate.ProviderNone}}
	svc := New(tr, translator)

	res := svc.Process(context.Background(), validInput())
	if res.Translation != res.Transcript {
		t.Fatalf("expected verbatim transcript as translation, got %q", res.Translation)
	}
	if res.TranslationProvider != translate.ProviderNone {
		t.Fatalf("unexpected provider: %q", res.TranslationProvider)
	}
	if !strings.Contains(res.Info, "already in target language") {
		t.Fatalf("unexpected info: %q", res.Info)
	}
}

func TestProcessTranslationFailureIsNotTerminal(t *testing.T) {
	tr := &fakeTranscriber{result: transcription.Result{Text: "bonjour", Language: "fr"}}
	translator := &fakeTranslator{outcome: translate.Outcome{
		Provider: translate.ProviderError,
		Err:      errors.New("unsupported language pair"),
	}}
	svc := New(tr, translator)

	res := svc.Process(context.Background(), validInput())
	if res.Failure != "" {
		t.Fatalf("translation failure must not fail the run: %q", res.Failure)
	}
	if res.Transcript != "bonjour" {
		t.Fatalf("transcript must survive, got %q", res.Transcript)
	}
	if res.TranslationProvider != translate.ProviderError {
		t.Fatalf("unexpected provider: %q", res.TranslationProvider)
	}
	if !strings.Contains(res.Translation, "unsupported language pair") {
		t.Fatalf("translation field must carry the diagnostic: %q", res.Translation)
	}
}

func TestProcessForcedSourceLanguage(t *testing.T) {
	// The transcriber echoes the forced code by contract.
	tr := &fakeTranscriber{result: transcription.Result{Text: "guten tag", Language: "de"}}
	translator := &fakeTranslator{outcome: translate.Outcome{Text: "good day", Provider: "mymemory"}}
	svc := New(tr, translator)

	in := validInput()
	in.SourceLanguage = "German"
	res := svc.Process(context.Background(), in)

	if tr.lastForced != "de" {
		t.Fatalf("expected forced code de, got %q", tr.lastForced)
	}
	if res.DetectedLanguage != "de" || res.DetectedLanguageLabel != "German" {
		t.Fatalf("unexpected detection: %q / %q", res.DetectedLanguage, res.DetectedLanguageLabel)
	}
}

func TestProcessTranslationNotRequested(t *testing.T) {
	tr := &fakeTranscriber{result: transcription.Result{Text: "bonjour", Language: "fr"}}
	translator := &fakeTranslator{}
	svc := New(tr, translator)

	in := validInput()
	in.Translate = false
	res := svc.Process(context.Background(), in)

	if translator.calls != 0 {
		t.Fatal("translator must not be called")
	}
	if res.Translation != "" || res.TranslationProvider != translate.ProviderNone {
		t.Fatalf("unexpected translation fields: %+v", res)
	}
	if !strings.Contains(res.Info, "translation not requested") || !strings.Contains(res.Info, "French") {
		t.Fatalf("unexpected info: %q", res.Info)
	}
}

func TestProcessEmptyTranscriptStillSucceeds(t *testing.T) {
	tr := &fakeTranscriber{result: transcription.Result{Text: "", Language: "en"}}
	translator := &fakeTranslator{outcome: translate.Outcome{Text: "", Provider: translate.ProviderNone}}
	svc := New(tr, translator)

	res := svc.Process(context.Background(), validInput())
	if res.Failure != "" {
		t.Fatalf("empty transcript must not fail the run: %q", res.Failure)
	}
	if !strings.Contains(res.Info, "nothing to translate") {
		t.Fatalf("unexpected info: %q", res.Info)
	}
}

func TestProcessExoticDetectedLanguageRenders(t *testing.T) {
	tr := &fakeTranscriber{result: transcription.Result{Text: "aloha", Language: "haw"}}
	translator := &fakeTranslator{outcome: translate.Outcome{Text: "hello", Provider: "google"}}
	svc := New(tr, translator)

	res := svc.Process(context.Background(), validInput())
	if res.DetectedLanguageLabel != "haw" {
		t.Fatalf("expected code fallback label, got %q", res.DetectedLanguageLabel)
	}
}
