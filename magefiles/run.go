//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and runs the testbed with lumen.toml.
func (Run) Testbed() error {
	mg.Deps(Build.Testbed)
	fmt.Println("Run testbed...")
	_, err := executeCmd("bin/lumen", withArgs("-config", "lumen.toml"), withStream())
	return err
}
