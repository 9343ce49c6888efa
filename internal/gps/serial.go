// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

// OpenSerial opens the receiver's serial port in 8N1 mode.
func OpenSerial(port string, baud int) (io.ReadWriteCloser, error) {
	// NOTE: adjust PortName to match your setup: /dev/serial0, /dev/ttyAMA0, /dev/ttyUSB0, etc.
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	rw, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open gps serial %s: %w", port, err)
	}
	return rw, nil
}

// Scan reads NMEA lines from r until ctx is done or r fails, calling onFix
// for every assembled fix. Malformed sentences are reported to onError
// (if set) and skipped.
func Scan(ctx context.Context, r io.Reader, asm *Assembler, onFix func(Fix), onError func(error)) error {
	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("gps read: %w", err)
		}

		fix, ok, err := asm.Feed(line)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			continue
		}
		if ok {
			onFix(fix)
		}
	}
}
