package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"chwadmin/internal/models"
)

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := ObjectKey("uploads", "Clinic Photo.JPG")

	assert.True(t, strings.HasPrefix(key, "uploads/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, ObjectKey("uploads", "Clinic Photo.JPG"))
}

func TestS3URL(t *testing.T) {
	custom := &S3Service{bucketName: "books", endpoint: "https://minio.local/", region: "af-south-1"}
	assert.Equal(t, "https://minio.local/books/a/b.html", custom.URL("a/b.html"))

	aws := &S3Service{bucketName: "books", region: "af-south-1"}
	assert.Equal(t, "https://books.s3.af-south-1.amazonaws.com/a.html", aws.URL("a.html"))
}

func TestDecodeEmptyContent(t *testing.T) {
	tree, err := decode(&models.Book{Title: "Nutrition"})
	assert.NoError(t, err)
	assert.Equal(t, "Nutrition", tree.Title)
	assert.Empty(t, tree.Chapters)

	_, err = decode(&models.Book{Content: []byte(`{"chapters":"nope"}`)})
	assert.Error(t, err)
}

func TestIdOf(t *testing.T) {
	assert.Equal(t, "r1", idOf(models.Role{Base: models.Base{ID: "r1"}}))
	assert.Equal(t, "", idOf(struct{}{}))
}
