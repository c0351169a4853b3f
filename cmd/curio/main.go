package main

import "github.com/curiohub/curiohub/internal/cli/cmd"

func main() {
	cmd.Execute()
}
