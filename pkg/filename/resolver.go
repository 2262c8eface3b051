// Package filename derives safe, collision-aware local filenames for
// downloaded resources from unreliable server metadata.
package filename

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// RFC 5987 extended form: filename*=UTF-8''percent-encoded.
	extendedFilename = regexp.MustCompile(`filename\*=UTF-8''([^;]+)`)

	// Plain form: filename="name" or filename=name.
	plainFilename = regexp.MustCompile(`filename=["']?([^"';]+)`)

	invalidChars = strings.NewReplacer(
		"<", "_", ">", "_", ":", "_", `"`, "_",
		"|", "_", "?", "_", "*", "_",
		"/", "_", `\`, "_",
	)
)

// Resolver derives output filenames for one download run. It owns the
// collision check against the output directory, so it must be the
// same instance that processes tasks one at a time.
type Resolver struct {
	dir string
}

// NewResolver creates a resolver rooted at the output directory.
func NewResolver(dir string) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve derives the filename for one download. The ordinal is the
// task's 1-based position in the input, used for synthesized names.
// The returned name is sanitized and unique within the output
// directory at the time of the call.
func (r *Resolver) Resolve(requestURL string, header http.Header, ordinal int) string {
	name := fromContentDisposition(header.Get("Content-Disposition"))

	if name == "" {
		name = fromURLPath(requestURL)
	}

	expectedExt := extensionForContentType(header.Get("Content-Type"))

	// A dynamic endpoint suffix like .aspx names the handler, not the
	// payload; swap it for the content-type extension. Other
	// mismatches are left alone.
	if name != "" && expectedExt != "" {
		currentExt := strings.ToLower(path.Ext(name))
		if currentExt != expectedExt && dynamicExtensions[currentExt] {
			name = strings.TrimSuffix(name, path.Ext(name)) + expectedExt
		}
	}

	if name == "" || !strings.Contains(name, ".") {
		name = fmt.Sprintf("file_%d%s", ordinal, expectedExt)
	}

	name = Sanitize(name)

	return r.unique(name)
}

// fromContentDisposition extracts a server-declared filename,
// preferring the RFC 5987 extended form over the plain parameter.
func fromContentDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}

	if m := extendedFilename.FindStringSubmatch(disposition); m != nil {
		if decoded, err := url.PathUnescape(m[1]); err == nil {
			return decoded
		}
		return m[1]
	}

	if m := plainFilename.FindStringSubmatch(disposition); m != nil {
		raw := strings.Trim(m[1], `"'`)
		return recoverMisencoded(raw)
	}

	return ""
}

// recoverMisencoded repairs names whose UTF-8 bytes were read as
// Latin-1 somewhere along the way. If every rune fits in a byte and
// those bytes form valid UTF-8, the reinterpretation wins.
func recoverMisencoded(s string) string {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xff {
			return s
		}
		b = append(b, byte(r))
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return s
}

// fromURLPath takes the last path segment of the request URL,
// percent-decoded.
func fromURLPath(requestURL string) string {
	parsed, err := url.Parse(requestURL)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}
	if decoded, err := url.PathUnescape(base); err == nil {
		return decoded
	}
	return base
}

// extensionForContentType maps the declared media type to its
// expected extension; unknown types yield the empty string.
func extensionForContentType(contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	return mimeExtensions[mediaType]
}

// Sanitize makes a filename safe for common filesystems: invalid
// characters become underscores, control characters are stripped,
// leading and trailing dots and spaces are trimmed, and reserved
// device names get a leading underscore.
func Sanitize(name string) string {
	name = invalidChars.Replace(name)

	var b strings.Builder
	for _, r := range name {
		if r >= 0x20 {
			b.WriteRune(r)
		}
	}
	name = b.String()

	name = strings.Trim(name, ". ")

	if name == "" {
		name = "file"
	}

	stem := strings.TrimSuffix(name, path.Ext(name))
	if reservedNames[strings.ToUpper(stem)] {
		name = "_" + name
	}

	return name
}

// unique appends an incrementing numeric suffix before the extension
// until the name does not collide with an existing file.
func (r *Resolver) unique(name string) string {
	if !r.exists(name) {
		return name
	}

	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if !r.exists(candidate) {
			return candidate
		}
	}
}

func (r *Resolver) exists(name string) bool {
	_, err := os.Stat(filepath.Join(r.dir, name))
	return err == nil
}
