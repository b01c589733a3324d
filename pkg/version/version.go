package version

import (
	"strings"

	_ "embed"
)

//go:embed VERSION
var raw string

// Get returns the release version of the server
func Get() string {
	return strings.TrimSpace(raw)
}
