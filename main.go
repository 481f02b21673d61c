package main

import "dealerhub/cmd"

func main() {
	cmd.Execute()
}
