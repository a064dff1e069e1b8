//go:build nogpu

package main

import "errors"

func checkShaders() error {
	return errors.New("built with -tags nogpu")
}
