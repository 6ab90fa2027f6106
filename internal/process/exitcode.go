package process

import "fmt"

// Exit codes at or above SignalExitBase encode a terminating signal the way
// POSIX shells do: 128 + signal number.
const SignalExitBase = 128

// maxSignal bounds the signal numbers recognised when decoding exit codes.
const maxSignal = 64

var signalNames = map[int]string{
	1:  "SIGHUP",
	2:  "SIGINT",
	3:  "SIGQUIT",
	4:  "SIGILL",
	6:  "SIGABRT",
	8:  "SIGFPE",
	9:  "SIGKILL",
	11: "SIGSEGV",
	13: "SIGPIPE",
	14: "SIGALRM",
	15: "SIGTERM",
}

// ExitCodeForSignal returns the conventional exit code of a process killed
// by sig.
func ExitCodeForSignal(sig int) int {
	return SignalExitBase + sig
}

// SignalFromExitCode reports the signal an exit code encodes, if any.
func SignalFromExitCode(code int) (sig int, ok bool) {
	if code <= SignalExitBase || code > SignalExitBase+maxSignal {
		return 0, false
	}
	return code - SignalExitBase, true
}

// SignalName returns a short name such as "SIGKILL".
func SignalName(sig int) string {
	if name, ok := signalNames[sig]; ok {
		return name
	}
	return fmt.Sprintf("signal %d", sig)
}

// ExitCodeLabel returns a human-readable label for common exit codes.
func ExitCodeLabel(code int) string {
	switch code {
	case 0:
		return "(clean)"
	case 1:
		return "(error)"
	}
	if sig, ok := SignalFromExitCode(code); ok {
		return "(" + SignalName(sig) + ")"
	}
	return ""
}
