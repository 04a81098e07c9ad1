//go:build mage

package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

var Gotestsum string

var LocalBin = filepath.Join(os.Getenv("PWD"), "/bin")

func makeLocalBin() error {
	if _, err := os.Stat(LocalBin); os.IsNotExist(err) {
		err = os.MkdirAll(LocalBin, os.ModePerm)
		if err != nil {
			return err
		}
	}
	return nil
}

// Gotestsum downloads gotestsum locally if necessary
func gotestsum() error {
	mg.Deps(makeLocalBin)
	Gotestsum = filepath.Join(LocalBin, "/gotestsum")

	if _, err := os.Stat(Gotestsum); os.IsNotExist(err) {
		fmt.Println(Gotestsum)
		cmd := exec.Command("go", "install", "gotest.tools/gotestsum@v1.8.2")
		cmd.Env = append(os.Environ(), "GOBIN="+LocalBin)
		return cmd.Run()
	}
	return nil
}

// UnitTests runs the tests that need no external services.
func UnitTests() error {
	mg.Deps(gotestsum)
	return runtest("coverage.xml", "unit.txt", "./...")
}

// Tests is a mage target that starts postgres, runs every test against it and generates coverage reports.
func Tests() (err error) {
	mg.Deps(gotestsum, dockerCheck)

	stop, err := startPostgres()
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := stop(); stopErr != nil && err == nil {
			err = stopErr
		}
	}()

	os.Setenv("PHASEANALYSIS_TEST_POSTGRES", testPostgres)
	defer os.Unsetenv("PHASEANALYSIS_TEST_POSTGRES")

	return runtest("coverage.xml", "all.txt", "./...")
}

func runtest(coverageFileName, outputFileName string, directories ...string) error {
	args := []string{"--", "-v"}
	if coverageFileName != "" {
		args = append(args, "-coverprofile", filepath.Join("test_reports", coverageFileName))
	}
	args = append(args, directories...)

	if err := os.MkdirAll("test_reports", 0o755); err != nil {
		return err
	}
	file, err := os.Create(filepath.Join("test_reports", outputFileName))
	if err != nil {
		return err
	}
	defer file.Close()

	cmd := exec.Command(Gotestsum, args...)
	cmd.Stdout = io.MultiWriter(os.Stdout, file)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
