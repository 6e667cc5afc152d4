package loader

import (
	"fmt"
	"io"
	"strings"
)

// WriteListing writes a three-column listing (address, emitted bytes,
// source) for the assembled program. bytesPerLine bounds the hex column;
// longer spans wrap onto continuation lines.
func (a *Assembler) WriteListing(w io.Writer, bytesPerLine int) error {
	if bytesPerLine <= 0 {
		bytesPerLine = 8
	}

	for _, span := range a.spans {
		source := strings.TrimSpace(span.Raw)

		if span.Size == 0 {
			if _, err := fmt.Fprintf(w, "%04X  %-*s  %s\n", span.Address, bytesPerLine*3-1, "", source); err != nil {
				return err
			}
			continue
		}

		for offset := 0; offset < span.Size; offset += bytesPerLine {
			count := span.Size - offset
			if count > bytesPerLine {
				count = bytesPerLine
			}

			var hex []string
			for i := 0; i < count; i++ {
				b, err := a.image.ReadByte(span.Address + offset + i)
				if err != nil {
					return err
				}
				hex = append(hex, fmt.Sprintf("%02X", b))
			}

			if offset == 0 {
				_, err := fmt.Fprintf(w, "%04X  %-*s  %s\n", span.Address, bytesPerLine*3-1, strings.Join(hex, " "), source)
				if err != nil {
					return err
				}
			} else {
				_, err := fmt.Fprintf(w, "%04X  %-*s\n", span.Address+offset, bytesPerLine*3-1, strings.Join(hex, " "))
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}
