package chip8

// DisplayBuffer is the 64x32 monochrome bit grid, one byte per pixel
// (0 or 1), packed row-major. It is the unique authoritative pixel state
// (invariant I5); nothing else caches pixels without going through it.
type DisplayBuffer [DisplayWidth * DisplayHeight]byte

func (d *DisplayBuffer) clear() {
	for i := range d {
		d[i] = 0
	}
}

// writeSprite XORs an n-row, 8-column sprite read from mem onto the display
// at (vx, vy), wrapping the starting coordinate but clipping individual rows
// and columns at the screen edges rather than wrapping them. It returns 1 iff
// drawing turned off at least one previously-set pixel (collision), matching
// VF's role in the Display instruction.
func writeSprite(d *DisplayBuffer, mem []byte, vx, vy, height byte) byte {
	startX := int(vx) % DisplayWidth
	startY := int(vy) % DisplayHeight

	var collision byte
	for row := 0; row < int(height); row++ {
		y := startY + row
		if y >= DisplayHeight {
			break
		}

		spriteRow := mem[row]
		for col := 0; col < 8; col++ {
			x := startX + col
			if x >= DisplayWidth {
				break
			}

			if spriteRow&(0x80>>uint(col)) == 0 {
				continue
			}

			idx := y*DisplayWidth + x
			if d[idx] == 1 {
				collision = 1
			}
			d[idx] ^= 1
		}
	}

	return collision
}
