package model

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type ReadyResponse struct {
	OK          bool   `json:"ok"`
	ServiceName string `json:"service_name,omitempty"`
}

type OptionsResponse struct {
	Qualities       []string `json:"qualities"`
	SourceLanguages []string `json:"source_languages"`
	TargetLanguages []string `json:"target_languages"`
}

type TranscriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

type TranslationRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
}

type TranslationResponse struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Provider string `json:"provider"`
	Detail   string `json:"detail,omitempty"`
}

type PipelineTimings struct {
	Transcription int64 `json:"transcription"`
	Translation   int64 `json:"translation"`
	Total         int64 `json:"total"`
}

type PipelineProcessResponse struct {
	Transcript            string          `json:"transcript"`
	DetectedLanguage      string          `json:"detected_language"`
	DetectedLanguageLabel string          `json:"detected_language_label,omitempty"`
	Translation           string          `json:"translation"`
	TranslationProvider   string          `json:"translation_provider"`
	Info                  string          `json:"info"`
	Failure               string          `json:"failure,omitempty"`
	TimingsMS             PipelineTimings `json:"timings_ms"`
}
