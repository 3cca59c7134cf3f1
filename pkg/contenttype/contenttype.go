// Package contenttype holds the fixed extension → MIME table used when
// writing response headers for resolved files.
package contenttype

import "strings"

// Table maps an extension token (".html") to a MIME type. It is built once
// and never mutated, so it is safe for concurrent reads.
type Table struct {
	types map[string]string
}

// Default is the table the server ships with: the page assets plus the
// audio and image types the player serves.
var Default = New(map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "text/javascript",
	".json": "application/json",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
})

// New copies m into a Table. Keys are normalised to lower case with a
// leading dot.
func New(m map[string]string) *Table {
	t := &Table{types: make(map[string]string, len(m))}
	for ext, typ := range m {
		t.types[normalize(ext)] = typ
	}
	return t
}

// Lookup returns the MIME type for ext, if the table has one.
func (t *Table) Lookup(ext string) (string, bool) {
	if ext == "" {
		return "", false
	}
	typ, ok := t.types[normalize(ext)]
	return typ, ok
}

func normalize(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
