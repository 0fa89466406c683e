package main

import "github/chapool/chainsig-relay/cmd"

func main() {
	cmd.Execute()
}
