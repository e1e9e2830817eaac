package main

import (
	"github.com/filmquorum/core/internal/app"
	"github.com/filmquorum/core/internal/config"
)

func main() {
	app.Go(config.Load())
}
