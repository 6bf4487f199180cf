package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryParamsValidate(t *testing.T) {
	params := QueryParams{}
	errors := Validate(&params)
	assert.Contains(t, errors, "Query")

	params.Query = "where is the office"
	assert.Empty(t, Validate(&params))
}

func TestUploadParamsValidate(t *testing.T) {
	params := UploadParams{Uploader: strings.Repeat("x", 65)}
	errors := Validate(&params)
	assert.Contains(t, errors, "Uploader")

	params.Uploader = ""
	assert.Empty(t, Validate(&params), "uploader is optional")
}
