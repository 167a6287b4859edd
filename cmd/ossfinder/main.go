package main

import "github.com/thep200/oss-finder/internal/app"

var version = "dev"

func main() {
	app.SetVersion(version)
	app.Execute()
}
