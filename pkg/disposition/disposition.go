// Package disposition derives download filenames from Content-Disposition
// headers.
package disposition

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultArchiveName is used when the server does not suggest a filename.
const DefaultArchiveName = "Convocations.zip"

var (
	extendedForm = regexp.MustCompile(`filename\*=UTF-8''([^;]+)`)
	plainForm    = regexp.MustCompile(`filename="?([^";]+)"?`)
)

// Filename returns the suggested filename in header. The RFC 5987 extended
// form wins over the plain form; fallback is returned when neither yields a
// usable name.
func Filename(header, fallback string) string {
	if header == "" {
		return fallback
	}
	if m := extendedForm.FindStringSubmatch(header); len(m) == 2 {
		if decoded, err := url.PathUnescape(strings.TrimSpace(m[1])); err == nil && decoded != "" {
			return sanitize(decoded, fallback)
		}
	}
	if m := plainForm.FindStringSubmatch(header); len(m) == 2 && strings.TrimSpace(m[1]) != "" {
		return sanitize(m[1], fallback)
	}
	return fallback
}

// Attachment renders a header announcing name in both forms.
func Attachment(name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 0x7e || r < 0x20 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, url.PathEscape(name))
}

// sanitize strips any directory component so the name is safe to write.
func sanitize(name, fallback string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return fallback
	}
	return name
}
