package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Glimmer/internal/demo"
	"github.com/Garsondee/Glimmer/internal/engine"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a YAML engine config")
	flag.Parse()

	cfg := engine.DefaultConfig()
	if configPath != "" {
		loaded, err := engine.LoadConfig(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}

	app, err := demo.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowTitle("Glimmer Overlay")
	ebiten.SetWindowSize(960, 540)
	if err := ebiten.RunGame(app); err != nil {
		log.Fatal(err)
	}
}
