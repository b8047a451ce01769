package main

import "realmquest/cmd/rq/root"

func main() {
	root.Execute()
}
