package main

import "image/color"

type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type Velocity struct {
	DX float64 `yaml:"dx"`
	DY float64 `yaml:"dy"`
}

type Ball struct {
	Radius float64    `yaml:"radius"`
	Color  color.RGBA `yaml:"color"`
}

// Arena is a singleton holding the playfield size in pixels.
type Arena struct {
	Width, Height float64
}
