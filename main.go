package main

import (
	"github.com/sirupsen/logrus"

	"github.com/leocov-dev/mrbulk/cmd"
	"github.com/leocov-dev/mrbulk/config"
	_ "github.com/leocov-dev/mrbulk/internal/commands/cmdanalyze"
	_ "github.com/leocov-dev/mrbulk/internal/commands/cmdshell"
	_ "github.com/leocov-dev/mrbulk/internal/commands/cmdtags"
)

var Version string

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	config.SetVersion(Version)
	cmd.Execute()
}
