package main

import "dataharvester/cmd"

func main() {
	cmd.Execute()
}
