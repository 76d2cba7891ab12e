package main

import (
	"orderharvest/cmd/orderharvest/commands"
	"orderharvest/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
