package main

import (
	"github.com/mistral-io/phaseanalysis/cmd/phaseanalysis/cmd"
	"github.com/mistral-io/phaseanalysis/internal/common/logging"
)

func main() {
	logging.ConfigureCommandLineLogging()
	cmd.Execute()
}
