package uploads

import "strings"

// ThumbnailSuffix is appended to a stored filename to derive its thumbnail
// reference. Thumbnails are generated by the upload service and never
// persisted here.
const ThumbnailSuffix = "-thumb.png"

// Paths converts between bare stored filenames and the public URLs handed to
// callers. PublicURL and StripBase must stay inverses of each other: read
// paths apply the former, the deletion coordinator applies the latter before
// talking to the upload service.
type Paths struct {
	base string
}

func NewPaths(publicBaseURL string) Paths {
	return Paths{base: publicBaseURL}
}

// PublicURL expands a stored filename to the URL it is served from.
func (p Paths) PublicURL(filename string) string {
	return p.base + filename
}

// ThumbnailURL derives the public thumbnail reference for a stored filename.
func (p Paths) ThumbnailURL(filename string) string {
	return p.base + filename + ThumbnailSuffix
}

// StripBase recovers the bare stored filename from a public URL. Values that
// do not carry the base are returned unchanged.
func (p Paths) StripBase(url string) string {
	return strings.TrimPrefix(url, p.base)
}
