//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target when running mage without arguments.
var Default = Build

var binaries = map[string]string{
	"orders-api":     "./cmd/api",
	"orders-worker":  "./cmd/worker",
	"orders-migrate": "./cmd/migrate",
}

// Build builds every binary into bin/.
func Build() error {
	for name, pkg := range binaries {
		fmt.Printf("Building %s...\n", name)
		if err := sh.Run("go", "build", "-o", "bin/"+name, pkg); err != nil {
			return fmt.Errorf("build %s: %w", name, err)
		}
	}
	return nil
}

// Test runs unit tests.
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-race", "./...")
}

// Integration runs the Postgres repository tests against a testcontainers database.
func Integration() error {
	fmt.Println("Running integration tests...")
	return sh.Run("go", "test", "-tags", "integration", "./internal/domains/orders/adapters/persistence/...")
}

// Pact generates the consumer contract and verifies the provider against it.
func Pact() error {
	fmt.Println("Running pact consumer tests...")
	if err := sh.Run("go", "test", "-tags", "pact", "./test/pact/consumer/..."); err != nil {
		return err
	}
	fmt.Println("Verifying provider...")
	return sh.Run("go", "test", "-tags", "pact", "./test/pact/provider/...")
}

// TestCover runs tests with coverage.
func TestCover() error {
	fmt.Println("Running tests with coverage...")
	return sh.Run("go", "test", "-cover", "-coverprofile=coverage.out", "./...")
}

// Vet runs go vet.
func Vet() error {
	fmt.Println("Running go vet...")
	return sh.Run("go", "vet", "./...")
}

// Migrate applies the order schema to POSTGRES_DSN.
func Migrate() error {
	return sh.RunV("go", "run", "./cmd/migrate")
}

// Clean removes build artifacts.
func Clean() error {
	fmt.Println("Cleaning...")
	_ = os.Remove("coverage.out")
	if err := os.RemoveAll("pacts"); err != nil {
		return err
	}
	return os.RemoveAll("bin")
}

// CI runs vet, tests with coverage, and the build.
func CI() error {
	mg.SerialDeps(Vet, TestCover, Build)
	return nil
}
