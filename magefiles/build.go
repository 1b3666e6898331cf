//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the demo binary into bin/.
func (Build) Demo() error {
	mg.Deps(Shaders.Validate)
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/obsidian", "./cmd/obsidian"), withStream()); err != nil {
		return err
	}
	fmt.Println("Built bin/obsidian")
	return nil
}

// Runs the demo with an optional config file from OBSIDIAN_CONFIG.
func (Build) Run() error {
	mg.Deps(Build.Demo)
	args := []string{}
	if path := os.Getenv("OBSIDIAN_CONFIG"); path != "" {
		args = append(args, "-config", path)
	}
	_, err := executeCmd("bin/obsidian", withArgs(args...), withStream())
	return err
}
