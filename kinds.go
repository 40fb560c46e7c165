package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const otherKind = "other"

// KindFile is the layout of kinds.yml: kind name to the formats it covers.
//
//	image: [jpg, jpeg, png]
//	video: [mp4, mkv]
type KindFile map[string][]string

// KindMap groups file formats into broad kinds for the summary.
type KindMap struct {
	formatMap map[string]string // "jpg" -> "image"
}

var defaultKinds = KindFile{
	"image":    {"jpg", "jpeg", "png", "gif", "bmp", "webp", "svg", "tif", "tiff", "heic", "avif", "ico"},
	"video":    {"mp4", "mkv", "avi", "mov", "wmv", "webm", "flv", "m4v", "mpg", "mpeg", "ts"},
	"audio":    {"mp3", "wav", "aac", "flac", "ogg", "m4a", "opus", "wma"},
	"document": {"pdf", "txt", "md", "doc", "docx", "odt", "rtf", "epub", "xls", "xlsx", "ppt", "pptx", "csv"},
	"archive":  {"zip", "tar", "gz", "bz2", "xz", "7z", "rar", "zst"},
	"subtitle": {"srt", "ass", "ssa", "vtt", "sub"},
}

// newKindMap builds lookup tables from a KindFile. The first kind (in sorted
// order) claiming a format wins.
func newKindMap(kinds KindFile) *KindMap {
	km := &KindMap{formatMap: make(map[string]string)}
	for _, kind := range sortedKindNames(kinds) {
		for _, format := range kinds[kind] {
			format = strings.ToLower(strings.TrimPrefix(format, "."))
			if _, taken := km.formatMap[format]; !taken {
				km.formatMap[format] = kind
			}
		}
	}
	return km
}

// KindOf returns the kind of a format, or "other".
func (km *KindMap) KindOf(format string) string {
	if km == nil {
		return otherKind
	}
	if kind, ok := km.formatMap[strings.ToLower(format)]; ok {
		return kind
	}
	return otherKind
}

// loadKinds looks for kinds.yml in the config directory and the current
// directory, falling back to the built-in table when neither exists.
func loadKinds() (*KindMap, error) {
	configPaths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		configPaths = append(configPaths, filepath.Join(home, ".config", "medialist"))
	}
	configPaths = append(configPaths, ".")

	for _, p := range configPaths {
		kindsPath := filepath.Join(p, "kinds.yml")
		if _, err := os.Stat(kindsPath); err == nil {
			return loadKindsFile(kindsPath)
		}
	}
	return newKindMap(defaultKinds), nil
}

func loadKindsFile(path string) (*KindMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading kinds file %s: %w", path, err)
	}
	var kinds KindFile
	if err := yaml.Unmarshal(data, &kinds); err != nil {
		return nil, fmt.Errorf("error parsing kinds file %s: %w", path, err)
	}
	return newKindMap(kinds), nil
}

func sortedKindNames(kinds KindFile) []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
