package filename

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headerWith(disposition, contentType string) http.Header {
	h := http.Header{}
	if disposition != "" {
		h.Set("Content-Disposition", disposition)
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}

func TestResolveFromContentDisposition(t *testing.T) {
	r := NewResolver(t.TempDir())

	tests := []struct {
		name        string
		url         string
		disposition string
		contentType string
		want        string
	}{
		{
			name:        "plain filename parameter",
			url:         "https://example.com/download",
			disposition: `attachment; filename="report.pdf"`,
			contentType: "application/pdf",
			want:        "report.pdf",
		},
		{
			name:        "rfc 5987 extended form wins",
			url:         "https://example.com/download",
			disposition: `attachment; filename="fallback.pdf"; filename*=UTF-8''r%C3%A9sum%C3%A9.pdf`,
			contentType: "application/pdf",
			want:        "résumé.pdf",
		},
		{
			name:        "unquoted filename",
			url:         "https://example.com/download",
			disposition: `attachment; filename=data.csv`,
			contentType: "text/csv",
			want:        "data.csv",
		},
		{
			name:        "misencoded latin-1 recovered as utf-8",
			url:         "https://example.com/download",
			disposition: "attachment; filename=\"rÃ©sumÃ©.pdf\"",
			contentType: "application/pdf",
			want:        "résumé.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.url, headerWith(tt.disposition, tt.contentType), 1)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFromURLPath(t *testing.T) {
	r := NewResolver(t.TempDir())

	got := r.Resolve("https://example.com/files/annual%20report.pdf", headerWith("", "application/pdf"), 1)
	assert.Equal(t, "annual report.pdf", got)
}

func TestResolveDynamicEndpointExtension(t *testing.T) {
	r := NewResolver(t.TempDir())

	tests := []struct {
		name        string
		disposition string
		contentType string
		want        string
	}{
		{
			name:        "aspx handler serving pdf",
			disposition: `attachment; filename="report.aspx"`,
			contentType: "application/pdf",
			want:        "report.pdf",
		},
		{
			name:        "php handler serving spreadsheet",
			disposition: `attachment; filename="export.php"`,
			contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			want:        "export.xlsx",
		},
		{
			name:        "non-dynamic mismatch left alone",
			disposition: `attachment; filename="picture.png"`,
			contentType: "image/jpeg",
			want:        "picture.png",
		},
		{
			name:        "dynamic extension with unknown content type kept",
			disposition: `attachment; filename="page.php"`,
			contentType: "application/octet-stream",
			want:        "page.php",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve("https://example.com/dl", headerWith(tt.disposition, tt.contentType), 1)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSynthesizedName(t *testing.T) {
	r := NewResolver(t.TempDir())

	// No disposition, no usable path segment.
	got := r.Resolve("https://example.com/", headerWith("", "application/pdf"), 7)
	assert.Equal(t, "file_7.pdf", got)

	// Unknown content type leaves the synthesized name bare.
	got = r.Resolve("https://example.com/", headerWith("", "application/octet-stream"), 3)
	assert.Equal(t, "file_3", got)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`inva<lid>na:me".pdf`, "inva_lid_na_me_.pdf"},
		{"path/to\\file.txt", "path_to_file.txt"},
		{"  .dotted.  ", "dotted"},
		{"", "file"},
		{"con.txt", "_con.txt"},
		{"COM1.csv", "_COM1.csv"},
		{"LPT9", "_LPT9"},
		{"console.txt", "console.txt"},
		{"what?.pdf", "what_.pdf"},
		{"tab\tchar.txt", "tabchar.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeNeverReturnsInvalidCharacters(t *testing.T) {
	inputs := []string{
		`a<b>c:d"e|f?g*h/i\j.pdf`,
		"\x01\x02name\x1f.txt",
		"nul.doc",
	}

	for _, in := range inputs {
		got := Sanitize(in)
		assert.NotContainsf(t, got, "<", "input %q", in)
		for _, c := range got {
			assert.GreaterOrEqual(t, int(c), 0x20)
		}
		assert.NotEmpty(t, got)
	}
}

func TestResolveCollisions(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.csv"), []byte("first"), 0644))

	got := r.Resolve("https://example.com/data.csv", headerWith("", "text/csv"), 1)
	assert.Equal(t, "data_1.csv", got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "data_1.csv"), []byte("second"), 0644))

	got = r.Resolve("https://example.com/data.csv", headerWith("", "text/csv"), 2)
	assert.Equal(t, "data_2.csv", got)

	// Pre-existing files are untouched.
	content, err := os.ReadFile(filepath.Join(dir, "data.csv"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))
}
