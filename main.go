// main.go
//
// Entry point that delegates CLI handling to the Cobra root command in cmd/root.go

package main

import (
	"github.com/df07/go-plugin-renderer/cmd"
)

func main() {
	cmd.Execute()
}
