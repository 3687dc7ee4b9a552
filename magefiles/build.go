//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the testbed shaders to SPIR-V into the asset directory.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the engine binary.
func (Build) Engine() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "ferrite", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Tidies the module after dependency changes.
func (Build) Tidy() error {
	return goTidy()
}

func buildShaders() error {
	shaders := map[string]string{
		"assets/shaders/basic.vert": "assets/shaders/basic.vert.spv",
		"assets/shaders/basic.frag": "assets/shaders/basic.frag.spv",
	}
	for src, out := range shaders {
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}
