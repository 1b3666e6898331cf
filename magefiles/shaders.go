//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/obsidian/engine/gpu"
	"github.com/Carmen-Shannon/obsidian/engine/gpu/gputest"
	"github.com/Carmen-Shannon/obsidian/engine/resource"
	"github.com/Carmen-Shannon/obsidian/engine/shader"
	"github.com/magefile/mage/mg"
)

type Shaders mg.Namespace

// Checks every pipeline's shaders against its bind group layouts. Set OBSIDIAN_SHADERS to
// validate a directory instead of the embedded library.
func (Shaders) Validate() error {
	lib, err := loadLibrary(os.Getenv("OBSIDIAN_SHADERS"))
	if err != nil {
		return err
	}
	ctx, _, _ := gputest.NewContext(gpu.Size{Width: 64, Height: 64})
	res, err := resource.NewManager(ctx, resource.WithLibrary(lib))
	if err != nil {
		return fmt.Errorf("shader validation failed: %w", err)
	}
	defer res.Release()
	fmt.Printf("Validated %d shader modules\n", len(lib.Modules()))
	return nil
}

func loadLibrary(dir string) (shader.Library, error) {
	if dir == "" {
		return shader.DefaultLibrary()
	}
	return shader.LoadDir(dir)
}
