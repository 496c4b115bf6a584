package main

import "ResuMatch/client/resumatch-cli/cmd"

func main() {
	cmd.Execute()
}
