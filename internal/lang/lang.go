// Package lang maps user-facing quality and language labels to the
// internal identifiers the rest of the pipeline works with.
package lang

// Auto is the sentinel language code meaning "detect from the audio".
const Auto = "auto"

// QualityTier names a transcription speed/accuracy tradeoff point.
type QualityTier string

const (
	TierFastest  QualityTier = "fastest"
	TierFast     QualityTier = "fast"
	TierBalanced QualityTier = "balanced"
	TierHigh     QualityTier = "high"
	TierMaximum  QualityTier = "maximum"
)

// tierModels is fixed at process start; every tier resolves to exactly one
// model-size identifier understood by the speech-to-text backend.
var tierModels = map[QualityTier]string{
	TierFastest:  "tiny",
	TierFast:     "base",
	TierBalanced: "small",
	TierHigh:     "medium",
	TierMaximum:  "large",
}

var qualityTiers = map[string]QualityTier{
	"Very Fast":       TierFastest,
	"Fast":            TierFast,
	"Balanced":        TierBalanced,
	"High Quality":    TierHigh,
	"Maximum Quality": TierMaximum,
}

var qualityLabels = []string{"Very Fast", "Fast", "Balanced", "High Quality", "Maximum Quality"}

type languageEntry struct {
	label string
	code  string
}

// languageTable is ordered for display; "Auto Detect" is valid only as a
// source selection.
var languageTable = []languageEntry{
	{"Auto Detect", Auto},
	{"Portuguese", "pt"},
	{"English", "en"},
	{"Spanish", "es"},
	{"French", "fr"},
	{"German", "de"},
	{"Italian", "it"},
	{"Japanese", "ja"},
	{"Korean", "ko"},
	{"Chinese (Simplified)", "zh-CN"},
	{"Russian", "ru"},
	{"Arabic", "ar"},
}

// TierForQuality resolves a quality label to its tier.
func TierForQuality(label string) (QualityTier, bool) {
	tier, ok := qualityTiers[label]
	return tier, ok
}

// ModelForTier resolves a tier to the backend model identifier.
func ModelForTier(tier QualityTier) (string, bool) {
	model, ok := tierModels[tier]
	return model, ok
}

// SourceCode resolves a source-language label. "Auto Detect" resolves to Auto.
func SourceCode(label string) (string, bool) {
	for _, e := range languageTable {
		if e.label == label {
			return e.code, true
		}
	}
	return "", false
}

// TargetCode resolves a target-language label. The target set excludes
// "Auto Detect" by construction, so the result is never Auto.
func TargetCode(label string) (string, bool) {
	code, ok := SourceCode(label)
	if !ok || code == Auto {
		return "", false
	}
	return code, true
}

// LabelForCode is a best-effort reverse lookup. Codes outside the table are
// returned as-is so exotic detected languages still render.
func LabelForCode(code string) string {
	for _, e := range languageTable {
		if e.code == code {
			return e.label
		}
	}
	return code
}

// QualityLabels lists the selectable quality levels in display order.
func QualityLabels() []string {
	out := make([]string, len(qualityLabels))
	copy(out, qualityLabels)
	return out
}

// SourceLabels lists the selectable source languages, "Auto Detect" first.
func SourceLabels() []string {
	out := make([]string, 0, len(languageTable))
	for _, e := range languageTable {
		out = append(out, e.label)
	}
	return out
}

// TargetLabels lists the selectable target languages.
func TargetLabels() []string {
	out := make([]string, 0, len(languageTable)-1)
	for _, e := range languageTable {
		if e.code == Auto {
			continue
		}
		out = append(out, e.label)
	}
	return out
}
