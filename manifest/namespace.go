package manifest

import (
	"fmt"
	"go/token"
	"strings"
)

// CheckNamespace reports whether ns is a dotted metadata namespace such as
// "Windows.Win32.System.Com". Every segment must be an identifier.
func CheckNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("empty namespace")
	}
	for _, seg := range strings.Split(ns, ".") {
		if !token.IsIdentifier(seg) {
			return fmt.Errorf("namespace %q: invalid segment %q", ns, seg)
		}
	}
	return nil
}
