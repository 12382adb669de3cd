// Package main is the entry point for the label-action application.
package main

import (
	"github.com/gha-utils/label-action/cmd"
)

func main() {
	cmd.Execute()
}
