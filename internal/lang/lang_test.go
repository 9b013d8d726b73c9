package lang

import "testing"

func TestTierForQuality(t *testing.T) {
	tier, ok := TierForQuality("Balanced")
	if !ok || tier != TierBalanced {
		t.Fatalf("TierForQuality(Balanced) = %q, %v", tier, ok)
	}
	if _, ok := TierForQuality("Ludicrous"); ok {
		t.Fatal("expected unknown quality label to miss")
	}
}

func TestEveryTierHasAModel(t *testing.T) {
	for _, label := range QualityLabels() {
		tier, ok := TierForQuality(label)
		if !ok {
			t.Fatalf("quality label %q has no tier", label)
		}
		if model, ok := ModelForTier(tier); !ok || model == "" {
			t.Fatalf("tier %q has no model identifier", tier)
		}
	}
}

func TestSourceCodeResolvesAuto(t *testing.T) {
	code, ok := SourceCode("Auto Detect")
	if !ok || code != Auto {
		t.Fatalf("SourceCode(Auto Detect) = %q, %v", code, ok)
	}
	code, ok = SourceCode("French")
	if !ok || code != "fr" {
		t.Fatalf("SourceCode(French) = %q, %v", code, ok)
	}
}

func TestTargetCodeExcludesAuto(t *testing.T) {
	if _, ok := TargetCode("Auto Detect"); ok {
		t.Fatal("target resolution must reject Auto Detect")
	}
	code, ok := TargetCode("English")
	if !ok || code != "en" {
		t.Fatalf("TargetCode(English) = %q, %v", code, ok)
	}
}

func TestTargetLabelsExcludeAuto(t *testing.T) {
	for _, label := range TargetLabels() {
		if label == "Auto Detect" {
			t.Fatal("Auto Detect leaked into target labels")
		}
	}
	if len(TargetLabels()) != len(SourceLabels())-1 {
		t.Fatalf("expected target list to be source list minus the auto entry")
	}
}

func TestLabelForCodeFallsBackToCode(t *testing.T) {
	if got := LabelForCode("fr"); got != "French" {
		t.Fatalf("LabelForCode(fr) = %q", got)
	}
	// Unknown detected languages stay renderable.
	if got := LabelForCode("haw"); got != "haw" {
		t.Fatalf("LabelForCode(haw) = %q", got)
	}
}
