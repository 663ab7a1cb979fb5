package streamship

import (
	"github.com/bft-labs/streamship/pkg/framing"
	"github.com/bft-labs/streamship/pkg/log"
)

// Version information for the streamship module.
const (
	// Version is the current version of the streamship module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the versions of all sub-modules.
func ModuleVersions() map[string]string {
	return map[string]string{
		"streamship": Version,
		"framing":    framing.Version,
		"log":        log.Version,
	}
}

// CompatibilityMatrix returns the minimum compatible version of each sub-module.
func CompatibilityMatrix() map[string]string {
	return map[string]string{
		"streamship": MinCompatibleVersion,
		"framing":    framing.MinCompatibleVersion,
		"log":        log.MinCompatibleVersion,
	}
}
