package constants

import (
	"path/filepath"
	"strings"
)

// Upload kinds accepted by the service.
const (
	FileImage   = 1 // signature uploads
	FileExcel   = 2 // marks import sheets
	FileUnknown = 99
)

func DetectFileTypeFromExt(filename string) int {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileImage
	case ".xlsx", ".xlsm":
		return FileExcel
	default:
		return FileUnknown
	}
}
