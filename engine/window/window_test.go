package window

import (
	"testing"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/stretchr/testify/assert"
)

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{title: "obsidian", width: 1280, height: 720}
	for _, opt := range []WindowBuilderOption{
		WithTitle(""),
		WithSize(0, 600),
		WithMinSize(640, 480),
		WithMaxSize(1920, 1080),
	} {
		opt(w)
	}
	assert.Equal(t, "obsidian", w.title)
	assert.Equal(t, gpu.Size{Width: 1280, Height: 720}, w.Size())
	assert.Equal(t, 640, w.minWidth)
	assert.Equal(t, 1080, w.maxHeight)

	WithTitle("lake")(w)
	WithSize(800, 600)(w)
	assert.Equal(t, "lake", w.title)
	assert.Equal(t, gpu.Size{Width: 800, Height: 600}, w.Size())
}

func TestSetSize_ReportsResize(t *testing.T) {
	w := &engineWindow{}
	var got []gpu.Size
	w.SetResizeCallback(func(size gpu.Size) { got = append(got, size) })

	w.setSize(1024, 768)
	w.setSize(0, 0)
	assert.Equal(t, []gpu.Size{{Width: 1024, Height: 768}, {}}, got)
}
