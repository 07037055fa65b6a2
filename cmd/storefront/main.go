package main

import "github.com/RoyceAzure/lab/storefront/cmd/storefront/commands"

func main() {
	commands.Execute()
}
