package main

import "github.com/oshokin/app-version/cmd/app-version/cmd"

func main() {
	cmd.Execute()
}
