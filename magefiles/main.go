//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

const (
	binaryName   = "phaseanalysis"
	buildPackage = "github.com/mistral-io/phaseanalysis/internal/common/build"
)

// Check dependent tools are present and the correct version.
func CheckDeps() error {
	checks := []struct {
		name  string
		check func() error
	}{
		{"docker", dockerCheck},
		{"go", goCheck},
		{"golangci-lint", golangciLintCheck},
	}
	failures := false
	for _, check := range checks {
		fmt.Printf("Checking %s... ", check.name)
		if err := check.check(); err != nil {
			fmt.Printf("FAILED\nReason: %v\n", err)
			failures = true
		} else {
			fmt.Println("PASSED")
		}
	}
	if failures {
		return errors.New("check(s) failed.")
	}
	return nil
}

// Build compiles the phaseanalysis binary into ./bin, stamping in version information.
func Build() error {
	mg.Deps(goCheck, makeLocalBin)
	timeTaken := time.Now()
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "UNKNOWN"
	}
	version := os.Getenv("RELEASE_VERSION")
	if version == "" {
		version = "dev"
	}
	ldflags := strings.Join([]string{
		"-X " + buildPackage + ".ReleaseVersion=" + version,
		"-X " + buildPackage + ".GitCommit=" + commit,
		"-X " + buildPackage + ".BuildTime=" + time.Now().UTC().Format(time.RFC3339),
	}, " ")
	err = goRun("build", "-ldflags", ldflags, "-o", binaryWithExt(LocalBin+"/"+binaryName), "./cmd/phaseanalysis")
	fmt.Println("Time to build:", time.Since(timeTaken))
	return err
}

// Clean removes build output and test reports.
func Clean() {
	fmt.Println("Cleaning...")
	for _, path := range []string{"bin", "test_reports"} {
		os.RemoveAll(path)
	}
}
