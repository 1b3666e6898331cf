package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		_ = SetLevel("info")
	})

	require.NoError(t, SetLevel("warn"))
	Info("hidden")
	Warn("shown warn")
	Error("shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warn")
	assert.Contains(t, out, "shown error")
	assert.Contains(t, out, "obsidian")
}

func TestKeyValues(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	Warn("model asset missing", "model", "boat", "asset", "boat.gltf")

	out := buf.String()
	assert.Contains(t, out, "model asset missing")
	assert.Contains(t, out, "model=boat")
	assert.Contains(t, out, "asset=boat.gltf")
	assert.NotContains(t, out, "%!")
}

func TestSetLevel_Unknown(t *testing.T) {
	assert.Error(t, SetLevel("verbose"))
}
