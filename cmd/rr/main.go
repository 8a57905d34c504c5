package main

import (
	"github.com/joho/godotenv"

	"github.com/qinghezeng/research-gamification/cmd/rr/root"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()
	root.Execute()
}
