package config

import (
	"errors"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr             string
	ASRBaseURL             string
	ASRAPIKey              string
	GoogleTranslateBaseURL string
	MyMemoryBaseURL        string
	MyMemoryEmail          string
	RequestTimeout         time.Duration
	TranscriptionTimeout   time.Duration
	TranslationTimeout     time.Duration
	MaxUploadBytes         int64
	DefaultQuality         string
	DefaultTargetLanguage  string
	LogLevel               string
}

type envConfig struct {
	ListenAddr                  string `env:"LISTEN_ADDR" envDefault:":8080"`
	ASRBaseURL                  string `env:"ASR_BASE_URL" envDefault:"http://127.0.0.1:8000/v1"`
	ASRAPIKey                   string `env:"ASR_API_KEY"`
	GoogleTranslateBaseURL      string `env:"GOOGLE_TRANSLATE_BASE_URL" envDefault:"https://translate.googleapis.com"`
	MyMemoryBaseURL             string `env:"MYMEMORY_BASE_URL" envDefault:"https://api.mymemory.translated.net"`
	MyMemoryEmail               string `env:"MYMEMORY_EMAIL"`
	RequestTimeoutSeconds       int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"25"`
	TranscriptionTimeoutSeconds int    `env:"TRANSCRIPTION_TIMEOUT_SECONDS" envDefault:"300"`
	TranslationTimeoutSeconds   int    `env:"TRANSLATION_TIMEOUT_SECONDS" envDefault:"10"`
	MaxUploadBytes              int64  `env:"MAX_UPLOAD_BYTES" envDefault:"26214400"`
	DefaultQuality              string `env:"DEFAULT_QUALITY" envDefault:"Balanced"`
	DefaultTargetLanguage       string `env:"DEFAULT_TARGET_LANGUAGE" envDefault:"English"`
	LogLevel                    string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var raw envConfig
	if err := cenv.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:             strings.TrimSpace(raw.ListenAddr),
		ASRBaseURL:             strings.TrimRight(strings.TrimSpace(raw.ASRBaseURL), "/"),
		ASRAPIKey:              strings.TrimSpace(raw.ASRAPIKey),
		GoogleTranslateBaseURL: strings.TrimRight(strings.TrimSpace(raw.GoogleTranslateBaseURL), "/"),
		MyMemoryBaseURL:        strings.TrimRight(strings.TrimSpace(raw.MyMemoryBaseURL), "/"),
		MyMemoryEmail:          strings.TrimSpace(raw.MyMemoryEmail),
		RequestTimeout:         time.Duration(raw.RequestTimeoutSeconds) * time.Second,
		TranscriptionTimeout:   time.Duration(raw.TranscriptionTimeoutSeconds) * time.Second,
		TranslationTimeout:     time.Duration(raw.TranslationTimeoutSeconds) * time.Second,
		MaxUploadBytes:         raw.MaxUploadBytes,
		DefaultQuality:         strings.TrimSpace(raw.DefaultQuality),
		DefaultTargetLanguage:  strings.TrimSpace(raw.DefaultTargetLanguage),
		LogLevel:               strings.ToLower(strings.TrimSpace(raw.LogLevel)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if c.ASRBaseURL == "" {
		return errors.New("ASR_BASE_URL must not be empty")
	}
	if c.GoogleTranslateBaseURL == "" {
		return errors.New("GOOGLE_TRANSLATE_BASE_URL must not be empty")
	}
	if c.MyMemoryBaseURL == "" {
		return errors.New("MYMEMORY_BASE_URL must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	if c.TranscriptionTimeout <= 0 {
		return errors.New("TRANSCRIPTION_TIMEOUT_SECONDS must be > 0")
	}
	if c.TranslationTimeout <= 0 {
		return errors.New("TRANSLATION_TIMEOUT_SECONDS must be > 0")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be > 0")
	}
	if c.DefaultQuality == "" {
		return errors.New("DEFAULT_QUALITY must not be empty")
	}
	if c.DefaultTargetLanguage == "" {
		return errors.New("DEFAULT_TARGET_LANGUAGE must not be empty")
	}
	return nil
}
