package main

import "github.com/dbsmedya/mitobreak/cmd/mitobreak/cmd"

func main() {
	cmd.Execute()
}
