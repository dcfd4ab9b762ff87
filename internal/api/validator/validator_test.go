package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type grantRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1,dive,permission"`
	Kind        string   `json:"kind" validate:"omitempty,content_kind"`
	Status      string   `json:"status" validate:"omitempty,publish_status"`
}

func TestCustomTags(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(grantRequest{Permissions: []string{"read_admin/books"}, Kind: "table", Status: "DRAFT"}))

	err := v.Validate(grantRequest{Permissions: []string{"read_admin/nothing"}, Kind: "video", Status: "ARCHIVED"})
	require.Error(t, err)

	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	msgs := ve.Format()
	assert.Equal(t, "kind is not a supported content type", msgs["kind"])
	assert.Equal(t, "status must be one of: DRAFT, QUEUED, PUBLISHED, FAILED", msgs["status"])
	assert.Contains(t, msgs, "permissions[0]")
}

func TestRequired(t *testing.T) {
	err := NewValidator().Validate(grantRequest{})
	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "permissions is required", ve.Format()["permissions"])
	assert.Equal(t, "validation failed on fields: permissions", ve.Error())
}
