package uploads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURLAndStripBaseAreInverses(t *testing.T) {
	paths := NewPaths("http://localhost:8081/uploads/")

	url := paths.PublicURL("cat.jpg")
	assert.Equal(t, "http://localhost:8081/uploads/cat.jpg", url)
	assert.Equal(t, "cat.jpg", paths.StripBase(url))
}

func TestStripBaseLeavesBareFilenamesAlone(t *testing.T) {
	paths := NewPaths("http://localhost:8081/uploads/")
	assert.Equal(t, "cat.jpg", paths.StripBase("cat.jpg"))
}

func TestThumbnailURL(t *testing.T) {
	paths := NewPaths("http://localhost:8081/uploads/")
	assert.Equal(t,
		"http://localhost:8081/uploads/cat.jpg-thumb.png",
		paths.ThumbnailURL("cat.jpg"))
}
