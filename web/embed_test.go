package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiles_IncludesPartials(t *testing.T) {
	_, err := fs.Stat(Files, "templates/_lists.html")
	require.NoError(t, err)

	pages, err := fs.Glob(Files, "templates/*.html")
	require.NoError(t, err)
	assert.Contains(t, pages, "templates/layout.html")
	assert.Contains(t, pages, "templates/users.html")

	_, err = fs.Stat(Files, "static/style.css")
	assert.NoError(t, err)
}
