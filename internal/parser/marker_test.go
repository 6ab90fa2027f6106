package parser

import "testing"

func TestDefaultMarker_Match(t *testing.T) {
	m := DefaultMarker()

	tests := []struct {
		line string
		want bool
	}{
		{"...Initialization completed", true},
		{"10:42:01.123 [main] INFO  TerasologyEngine - Initialization completed", true},
		{"Initialization completed in 12.3s", true},
		{"some babble", false},
		{"initialization completed", false},
		{"Initialization", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := m.Match(tt.line); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestNewMarker(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		line    string
		want    bool
		wantErr bool
	}{
		{"engine prefix", `TerasologyEngine.+Initialization completed`, "TerasologyEngine - Initialization completed", true, false},
		{"engine prefix missing", `TerasologyEngine.+Initialization completed`, "...Initialization completed", false, false},
		{"anchored", `^READY$`, "READY", true, false},
		{"empty", ``, "", false, true},
		{"invalid", `(`, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMarker(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewMarker(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := m.Match(tt.line); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.line, got, tt.want)
			}
			if m.String() != tt.pattern {
				t.Errorf("String() = %q, want %q", m.String(), tt.pattern)
			}
		})
	}
}
