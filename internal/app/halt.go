// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log"
	"time"
)

// Halt logs err and parks the calling goroutine forever. There is no
// recovery; power cycle the device.
func Halt(err error) {
	log.Printf("app: halted: %v", err)
	for {
		// Not select{}: a lone blocked goroutine is reported as a deadlock.
		time.Sleep(time.Hour)
	}
}
