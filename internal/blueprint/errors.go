package blueprint

import "errors"

var (
	ErrManifestNotFound  = errors.New("blueprint manifest not found")
	ErrInvalidManifest   = errors.New("invalid blueprint manifest")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrInvalidSlug       = errors.New("project slug is not a valid module name")
	ErrUnsupportedFormat = errors.New("unsupported answers file format")
	ErrOutputExists      = errors.New("output directory already exists")
	ErrRenderFailed      = errors.New("failed to render template")
)
