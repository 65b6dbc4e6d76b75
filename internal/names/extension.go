package names

import "strings"

// Extension returns the text after the last dot, and whether the name has a dot at all
func Extension(name string) (string, bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", false
	}
	return name[i+1:], true
}

// Reconcile applies the original extension to an edited name that has none.
// An edited name containing any dot is returned verbatim, even when that drops
// the original extension.
func Reconcile(originalName, editedName string) string {
	ext, ok := Extension(originalName)
	if !ok || ext == "" {
		return editedName
	}

	if strings.Contains(editedName, ".") {
		return editedName
	}

	// An empty edit becomes ".ext", which validates as a dotfile
	return editedName + "." + ext
}

// IsModified reports whether candidate differs from the original name (case-sensitive)
func IsModified(originalName, candidate string) bool {
	return originalName != candidate
}
