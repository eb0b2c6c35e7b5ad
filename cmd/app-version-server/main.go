package main

import "github.com/oshokin/app-version/cmd/app-version-server/cmd"

func main() {
	cmd.Execute()
}
