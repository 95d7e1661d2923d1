package main

import "matrimony-backend/cmd"

func main() {
	cmd.Execute()
}
