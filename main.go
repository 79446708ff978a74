package main

import "library-system/cmd"

func main() {
	cmd.Execute()
}
