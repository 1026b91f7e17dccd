package core

import (
	_ "embed"
	"fmt"
	"strings"

	version "github.com/hashicorp/go-version"
)

//go:embed version
var clientVersion string

func ClientVersion() string {
	return strings.TrimSpace(clientVersion)
}

func parseVersion(v string) (*version.Version, error) {
	return version.NewVersion(sanitizeVersion(v))
}

// sanitizeVersion truncates all segments above core (x.y.z).
func sanitizeVersion(v string) string {
	v = strings.TrimSpace(v)
	segments := strings.Split(v, ".")
	if len(segments) > 3 {
		return strings.Join(segments[:3], ".")
	}
	return v
}

// checkVersionCompat fails when the server is older than the first version
// that supports the operation. Either side being unknown disables the check.
func checkVersionCompat(op *Operation, serverVersion *version.Version) error {
	if op.MinVersion == nil || serverVersion == nil {
		return nil
	}
	if serverVersion.LessThan(op.MinVersion) {
		return &ConfigError{
			Op: op.Name,
			Reason: fmt.Sprintf(
				"operation is not supported in server version %s (supported from version %s)",
				serverVersion, op.MinVersion,
			),
		}
	}
	return nil
}
