//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles every package of the engine.
func (Build) Engine() error {
	_, err := executeCmd("go", withArgs("build", "./..."), withStream())
	return err
}

// Builds the testbed binary into bin/.
func (Build) Testbed() error {
	mg.Deps(Build.Engine)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/lumen", "."), withStream())
	return err
}
