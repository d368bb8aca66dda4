package main

import "markethub_backend/internal/app"

func main() {
	app.Run()
}
