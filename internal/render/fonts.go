package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontSource names a font the renderer can draw with. Exactly one of
// Builtin and Path should be set; Label is the name print commands
// select the font by.
type FontSource struct {
	Label   string
	Builtin string
	Path    string
}

func (s FontSource) load() (*opentype.Font, error) {
	if len(s.Builtin) > 0 {
		data, ok := builtinFont(s.Builtin)
		if !ok {
			return nil, fmt.Errorf(`Unrecognised builtin font "%s"`, s.Builtin)
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("Couldn't parse builtin font %s:\n%w", s.Builtin, err)
		}
		return parsed, nil
	}
	return parseFontFile(s.Path)
}

func builtinFont(name string) ([]byte, bool) {
	switch name {
	case "gomono":
		return gomono.TTF, true
	case "goregular":
		return goregular.TTF, true
	}
	return nil, false
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Couldn't read font file %s:\n%w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".ttc") {
		collection, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("Couldn't parse font collection %s:\n%w", path, err)
		}
		parsed, err := collection.Font(0)
		if err != nil {
			return nil, fmt.Errorf("Couldn't load the first font of %s:\n%w", path, err)
		}
		return parsed, nil
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("Couldn't parse font %s:\n%w", path, err)
	}
	return parsed, nil
}
