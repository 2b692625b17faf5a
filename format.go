package labelzoom

import (
	"path/filepath"
	"strings"
)

// Format identifies the type of a source document.
type Format int

// Supported source formats. All of them convert to ZPL.
const (
	FormatPDF Format = iota + 1
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatBMP
)

var formats = map[Format]struct {
	name        string
	contentType string
}{
	FormatPDF:  {"pdf", "application/pdf"},
	FormatPNG:  {"png", "image/png"},
	FormatJPEG: {"jpeg", "image/jpeg"},
	FormatGIF:  {"gif", "image/gif"},
	FormatBMP:  {"bmp", "image/bmp"},
}

func (f Format) String() string {
	if info, ok := formats[f]; ok {
		return info.name
	}
	return "unknown"
}

// ContentType returns the MIME type sent with documents of this format.
func (f Format) ContentType() string {
	return formats[f].contentType
}

func (f Format) valid() bool {
	_, ok := formats[f]
	return ok
}

func (f Format) pathSegment() string {
	return formats[f].name
}

// FormatFromPath determines the source format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF, nil
	case ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".gif":
		return FormatGIF, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return 0, invalidArgument("unsupported file type: " + path)
	}
}
