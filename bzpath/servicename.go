package bzpath

import (
	"fmt"
	"strings"
)

// ErrInvalidServiceName is returned when a service name fails
// validation: it must be exactly "bzperi" or begin with "bzperi."
// followed by one or more dot-separated lower-case
// alphanumeric/underscore identifier segments.
var ErrInvalidServiceName = fmt.Errorf("bzpath: invalid service name")

// ValidateServiceName checks name against BzPeri's naming rule:
// non-empty, <=255 bytes, lower-case, and either "bzperi" or a
// "bzperi."-prefixed dotted identifier chain.
func ValidateServiceName(name string) error {
	if name == "" || len(name) > 255 {
		return fmt.Errorf("%w: %q", ErrInvalidServiceName, name)
	}
	if name == "bzperi" {
		return nil
	}
	const prefix = "bzperi."
	if !strings.HasPrefix(name, prefix) {
		return fmt.Errorf("%w: %q", ErrInvalidServiceName, name)
	}
	rest := strings.TrimPrefix(name, prefix)
	if rest == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServiceName, name)
	}
	for _, segment := range strings.Split(rest, ".") {
		if segment == "" || !isLowerIdentifier(segment) {
			return fmt.Errorf("%w: %q", ErrInvalidServiceName, name)
		}
	}
	return nil
}

// DerivedBusName returns the well-known D-Bus name for a validated
// service name: "com.<service_name>" with dots preserved.
func DerivedBusName(serviceName string) string {
	return "com." + serviceName
}

// DerivedRootPath returns the root object path for a validated service
// name: "/com/<service_name with '.' -> '/'>".
func DerivedRootPath(serviceName string) ObjectPath {
	return ObjectPath("/com/" + strings.ReplaceAll(serviceName, ".", "/"))
}

func isLowerIdentifier(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
