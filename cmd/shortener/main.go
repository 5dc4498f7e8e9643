package main

import "github.com/avolkov/linkshort/internal/app"

func main() {
	app.Run()
}
