package styles

import "testing"

func TestRingColorCycles(t *testing.T) {
	p := NewRing("test", [][]string{
		{"#000000"},
		{"#111111", "#222222"},
	})

	if got := p.Color(1, 0); got != "#111111" {
		t.Errorf("Color(1,0) = %q", got)
	}
	if got := p.Color(1, 2); got != "#111111" {
		t.Errorf("slots should cycle within a ring, got %q", got)
	}
	if got := p.Color(5, 1); got != "#222222" {
		t.Errorf("deep rings should reuse the last ring, got %q", got)
	}
}

func TestRingColorEmpty(t *testing.T) {
	if got := NewRing("empty", nil).Color(0, 0); got != "#cccccc" {
		t.Errorf("empty palette fallback = %q", got)
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "vivid", false},
		{"vivid", "vivid", false},
		{"muted", "muted", false},
		{"neon", "", true},
	}

	for _, tt := range tests {
		p, err := ByName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ByName(%q) err = %v", tt.in, err)
			continue
		}
		if err == nil && p.Name() != tt.want {
			t.Errorf("ByName(%q) = %q, want %q", tt.in, p.Name(), tt.want)
		}
	}
}
