package namespace

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var reservedDeviceName = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)

// SanitizeFilename turns a client-supplied filename into one that is safe on
// any common filesystem. It keeps the last path component, drops characters
// reserved on Windows and control characters, blanks out "." / ".." and
// reserved device names, strips trailing dots and spaces and cuts the result
// to maxBytes on a rune boundary. The result may be empty.
func SanitizeFilename(name string, maxBytes int) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`?<>:*|"`, r) {
			return -1
		}
		return r
	}, name)

	if name == "." || name == ".." || reservedDeviceName.MatchString(name) {
		return ""
	}

	name = strings.TrimRight(name, ". ")
	for len(name) > maxBytes {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return strings.TrimRight(name, ". ")
}
