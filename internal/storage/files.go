// Package storage persists synthesized audio to disk when a caller
// asks for a shareable URL instead of a streamed body. Files are
// served statically under /audio/.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path the HTTP server mounts the audio
// directory under.
const URLPrefix = "/audio/"

type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "storage/audio"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Dir() string { return f.dir }

// Save writes blob under the requested file name and returns its public
// URL path. An empty name gets a generated one; the extension follows
// the audio MIME type.
func (f *FileStore) Save(name string, blob []byte, mime string) (string, error) {
	name = sanitizeName(name)
	if name == "" {
		name = uuid.NewString()
	}
	if filepath.Ext(name) == "" {
		name += extensionFor(mime)
	}

	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return URLPrefix + name, nil
}

// sanitizeName keeps a single safe path component. Anything that could
// escape the audio directory is dropped.
func sanitizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ".")
}

func extensionFor(mime string) string {
	switch mime {
	case "audio/wav":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".mp3"
	}
}
