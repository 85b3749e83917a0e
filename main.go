package main

import "github.com/theirongolddev/aimon/cmd"

func main() {
	cmd.Execute()
}
