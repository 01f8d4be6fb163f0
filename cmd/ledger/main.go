package main

import "github.com/fekuna/omnipos-ledger-service/cmd/ledger/commands"

func main() {
	commands.Execute()
}
