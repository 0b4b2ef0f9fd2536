package main

import "github.com/KaramelBytes/cortexai-cli/cmd"

func main() {
	cmd.Execute()
}
