package shutdown

import (
	"fmt"
	"os"
	"strings"
	"syscall"
)

var signalNames = map[string]os.Signal{
	"SIGINT":  syscall.SIGINT,
	"SIGTERM": syscall.SIGTERM,
	"SIGHUP":  syscall.SIGHUP,
	"SIGQUIT": syscall.SIGQUIT,
}

// DefaultSignals are used when none are configured.
var DefaultSignals = []string{"SIGINT", "SIGTERM"}

// ParseSignals maps names such as "INT" or "SIGTERM" to signals, dropping duplicates.
func ParseSignals(names []string) ([]os.Signal, error) {
	seen := map[string]bool{}
	out := make([]os.Signal, 0, len(names))
	for _, name := range names {
		key := strings.ToUpper(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if !strings.HasPrefix(key, "SIG") {
			key = "SIG" + key
		}
		sig, ok := signalNames[key]
		if !ok {
			return nil, fmt.Errorf("unsupported signal %q", name)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sig)
	}
	return out, nil
}
