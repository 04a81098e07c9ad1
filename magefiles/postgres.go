//go:build mage

package main

import (
	"fmt"
	"strings"
	"time"

	semver "github.com/Masterminds/semver/v3"
	"github.com/magefile/mage/sh"
	"github.com/pkg/errors"
)

const (
	minDockerVersion  = ">= 19.0.0"
	postgresContainer = "phaseanalysis-postgres"
	postgresImage     = "postgres:14.2"
	testPostgres      = "host=localhost port=5433 user=postgres password=psw sslmode=disable"
)

func docker(args ...string) error {
	return sh.Run(binaryWithExt("docker"), args...)
}

func dockerCheck() error {
	return checkVersion(func() (*semver.Version, error) {
		output, err := sh.Output(binaryWithExt("docker"), "version", "--format", "{{.Client.Version}}")
		if err != nil {
			return nil, errors.WithMessage(err, "error running docker version")
		}
		return semver.NewVersion(strings.TrimSpace(output))
	}, minDockerVersion)
}

// startPostgres runs a throwaway postgres on port 5433 and waits until it accepts connections.  The returned
// function removes the container.
func startPostgres() (func() error, error) {
	err := docker("run", "-d", "--name="+postgresContainer, "-p", "5433:5432", "-e", "POSTGRES_PASSWORD=psw", postgresImage)
	if err != nil {
		return nil, err
	}
	stop := func() error {
		return docker("rm", "-f", postgresContainer)
	}
	for attempt := 0; attempt < 30; attempt++ {
		if docker("exec", postgresContainer, "pg_isready", "-U", "postgres") == nil {
			return stop, nil
		}
		time.Sleep(time.Second)
	}
	_ = stop()
	return nil, fmt.Errorf("postgres in %s did not become ready", postgresContainer)
}
