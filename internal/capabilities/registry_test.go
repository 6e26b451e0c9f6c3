package capabilities

import "testing"

func TestLoadManifest(t *testing.T) {
	m, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if m.Service == "" {
		t.Error("manifest has no service name")
	}

	want := map[string]bool{
		"draft:updated":   false,
		"draft:approved":  false,
		"draft:edited":    false,
		"draft:escalated": false,
		"draft:note":      false,
		"draft:feedback":  false,
	}
	for _, c := range m.Capabilities {
		if _, known := want[c]; known {
			want[c] = true
		}
	}
	for c, seen := range want {
		if !seen {
			t.Errorf("manifest missing capability %s", c)
		}
	}
}
