package main

import "resonance/internal/app"

func main() {
	app.Main()
}
