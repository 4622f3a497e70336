package main

import "github.com/vietddude/gtasmon/internal/cli"

func main() {
	cli.Execute()
}
