package main

import "commonplate-backend/cmd"

func main() {
	cmd.Run()
}
