package main

import (
	"context"
	"fmt"

	"github.com/tyemirov/cli2text/internal/cli"
	"github.com/tyemirov/cli2text/internal/utils"
)

// main is the entry point for the cli2text command.
func main() {
	loggerInstance, loggerInitializationError := utils.NewApplicationLogger(utils.DebugRequestedByEnvironment())
	if loggerInitializationError != nil {
		panic(fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerInitializationError))
	}
	defer func() { _ = loggerInstance.Sync() }()
	if applicationExecutionError := cli.Execute(context.Background()); applicationExecutionError != nil {
		loggerInstance.Fatal(utils.ApplicationExecutionFailedMessage + ": " + applicationExecutionError.Error())
	}
}
