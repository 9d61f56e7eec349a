package main

import "github.com/amrbasha900/mobile-endpoints/cmd"

func main() {
	cmd.Execute()
}
