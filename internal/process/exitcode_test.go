package process

import "testing"

func TestExitCodeForSignal(t *testing.T) {
	tests := []struct {
		sig  int
		want int
	}{
		{9, 137},
		{15, 143},
		{2, 130},
		{11, 139},
	}

	for _, tt := range tests {
		if got := ExitCodeForSignal(tt.sig); got != tt.want {
			t.Errorf("ExitCodeForSignal(%d) = %d, want %d", tt.sig, got, tt.want)
		}
	}
}

func TestSignalFromExitCode(t *testing.T) {
	tests := []struct {
		code    int
		wantSig int
		wantOK  bool
	}{
		{0, 0, false},
		{1, 0, false},
		{127, 0, false},
		{128, 0, false},
		{129, 1, true},
		{137, 9, true},
		{143, 15, true},
		{192, 64, true},
		{193, 0, false},
		{255, 0, false},
		{-1, 0, false},
	}

	for _, tt := range tests {
		sig, ok := SignalFromExitCode(tt.code)
		if sig != tt.wantSig || ok != tt.wantOK {
			t.Errorf("SignalFromExitCode(%d) = (%d, %v), want (%d, %v)",
				tt.code, sig, ok, tt.wantSig, tt.wantOK)
		}
	}
}

func TestSignalRoundTrip(t *testing.T) {
	for sig := 1; sig <= maxSignal; sig++ {
		got, ok := SignalFromExitCode(ExitCodeForSignal(sig))
		if !ok || got != sig {
			t.Errorf("round trip of signal %d = (%d, %v)", sig, got, ok)
		}
	}
}

func TestExitCodeLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "(clean)"},
		{1, "(error)"},
		{137, "(SIGKILL)"},
		{143, "(SIGTERM)"},
		{134, "(SIGABRT)"},
		{160, "(signal 32)"},
		{42, ""},
	}

	for _, tt := range tests {
		if got := ExitCodeLabel(tt.code); got != tt.want {
			t.Errorf("ExitCodeLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
