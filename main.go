package main

import "github.com/frahmantamala/elementar/cmd"

func main() {
	cmd.Execute()
}
