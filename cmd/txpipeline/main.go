package main

import (
	"txpipeline/cmd/txpipeline/commands"
	"txpipeline/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
