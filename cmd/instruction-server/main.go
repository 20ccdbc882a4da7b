package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/instruction-server/cmd/instruction-server/cmd"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := cmd.Execute(version, gitCommit, buildTime); err != nil {
		logrus.StandardLogger().WithError(err).Error("instruction-server exited with error")
		os.Exit(1)
	}
}
