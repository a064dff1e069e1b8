//go:build !nogpu

package main

import (
	"log"

	"github.com/gogpu/termcell/internal/gpu"
)

func checkShaders() error {
	compiled, err := gpu.CompileShaders()
	if err != nil {
		return err
	}
	for _, s := range gpu.AllShaders {
		log.Printf("%s: %d SPIR-V words", s, len(compiled[s]))
	}
	return nil
}
