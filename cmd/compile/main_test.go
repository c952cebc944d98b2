package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PrintsStatement(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, run(&out, "/states/WI/counties/Dane"))

	assert.Contains(t, out.String(), "FROM geo.counties g")
	assert.Contains(t, out.String(), `$1 = "WI"`)
	assert.Contains(t, out.String(), `$2 = "Dane"`)
}

func TestRun_BuildError(t *testing.T) {
	var out bytes.Buffer

	err := run(&out, "/states/WI/years/2020/populations?group=township")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Empty(t, out.String())
}

func TestRun_UnknownRoute(t *testing.T) {
	err := run(&bytes.Buffer{}, "/countries/US")
	assert.ErrorContains(t, err, "404")
}
