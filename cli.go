//go:build cli
// +build cli

package main

import (
	_ "gaspos.GO/custom"

	"gaspos.GO/cmd"
	"gaspos.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
