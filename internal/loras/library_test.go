package loras

import "testing"

func TestModelByID(t *testing.T) {
	m, ok := ModelByID("xlabs-realism")
	if !ok {
		t.Fatal("xlabs-realism missing from catalog")
	}
	if m.Path != "XLabs-AI/flux-RealismLora" || m.RecommendedScale != 0.8 {
		t.Fatalf("model = %+v", m)
	}
	if _, ok := ModelByID("nope"); ok {
		t.Fatal("unknown id resolved")
	}
}

func TestModelsByCategory(t *testing.T) {
	realism := ModelsByCategory(CategoryRealism)
	if len(realism) != 3 {
		t.Fatalf("realism models = %d, want 3", len(realism))
	}
	for _, m := range realism {
		if m.Category != CategoryRealism {
			t.Errorf("model %s in wrong category %s", m.ID, m.Category)
		}
	}
}

func TestPresetsForSectionIncludesUniversal(t *testing.T) {
	ps := PresetsForSection("Pit")
	var ids []string
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	if len(ps) != 2 {
		t.Fatalf("presets = %v, want pit plus the universal preset", ids)
	}
	found := map[string]bool{}
	for _, p := range ps {
		found[p.ID] = true
	}
	if !found["pit"] || !found["artistic-cinematic"] {
		t.Fatalf("presets = %v", ids)
	}
}

func TestPresetWeightsResolveToCatalogModels(t *testing.T) {
	paths := map[string]bool{}
	for _, m := range Models() {
		paths[m.Path] = true
	}
	for _, p := range Presets() {
		for _, lw := range p.LoRAs {
			if !paths[lw.Path] {
				t.Errorf("preset %s references unknown adapter %s", p.ID, lw.Path)
			}
			if lw.Scale <= 0 || lw.Scale > 2 {
				t.Errorf("preset %s has out-of-range scale %v", p.ID, lw.Scale)
			}
		}
	}
}

func TestCatalogCopiesAreIsolated(t *testing.T) {
	ms := Models()
	ms[0].ID = "mutated"
	if models[0].ID == "mutated" {
		t.Fatal("Models() exposed internal slice")
	}
}
