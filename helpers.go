package blogspace

import (
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// SplitTags splits a comma-separated tag input, trimming whitespace around
// each tag. Order and duplicates are preserved; empty fragments are dropped.
func SplitTags(input string) []string {
	var out []string
	for _, t := range strings.Split(input, ",") {
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NewPostID derives a post id for a target. The target prefix keeps ids
// self-describing; the random suffix makes concurrent publishes collision-free.
func NewPostID(target string) string {
	return target + "_" + uuid.NewString()
}

// ImageID derives the storage key for an uploaded filename by
// percent-encoding it, deterministically.
func ImageID(filename string) string {
	return url.PathEscape(filename)
}

// allowedImageExtensions are the only upload extensions accepted, matched
// case-insensitively on the extension alone.
var allowedImageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
}

// AllowedImageFilename reports whether the filename carries an accepted
// image extension.
func AllowedImageFilename(name string) bool {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return false
	}
	return allowedImageExtensions[strings.ToLower(name[i+1:])]
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}
