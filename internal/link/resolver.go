package link

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"go.bug.st/serial"
)

// candidatePatterns returns the device-name patterns that identify a
// plausible USB-serial adapter on the current platform. Matched against
// the base name of each enumerated port.
func candidatePatterns() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"cu.usbserial-*", "cu.usbmodem*", "cu.SLAB_USBtoUART*"}
	case "linux":
		return []string{"ttyUSB*", "ttyACM*"}
	default:
		return []string{"*"}
	}
}

// Resolve returns the serial port path to use.
//
// If explicit is non-empty it is returned unchecked; the caller owns
// open-failure handling. Otherwise the system's serial ports are
// enumerated, filtered to plausible USB adapters, sorted lexically for
// determinism, and the first match is returned.
//
// Returns ErrPortNotFound (wrapped with the patterns searched) when
// auto-detection finds nothing.
func Resolve(explicit string) (string, error) {
	return resolveWith(explicit, serial.GetPortsList)
}

// resolveWith is Resolve with an injectable enumerator, for tests.
func resolveWith(explicit string, list func() ([]string, error)) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	ports, err := list()
	if err != nil {
		return "", fmt.Errorf("enumerating serial ports: %w", err)
	}

	patterns := candidatePatterns()
	var candidates []string
	for _, port := range ports {
		base := filepath.Base(port)
		for _, pattern := range patterns {
			if ok, _ := filepath.Match(pattern, base); ok {
				candidates = append(candidates, port)
				break
			}
		}
	}

	if len(candidates) == 0 {
		return "", fmt.Errorf("%w (looked for %v)", ErrPortNotFound, patterns)
	}

	sort.Strings(candidates)
	return candidates[0], nil
}
