package backend

import "strings"

// Has reports whether the named backend can be constructed in this build.
func Has(name string) bool {
	return name == CPU
}

// Available returns a comma-separated list of available backends.
func Available() string {
	entries := []string{}
	for _, name := range []string{CPU, CUDA} {
		if Has(name) {
			entries = append(entries, name)
		}
	}
	return strings.Join(entries, ",")
}
