package listing

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/go6809/asm6809/asm"
)

// WriteSymbols writes one "NAME EQU $hhhh" line per exported symbol,
// sorted by name, the conventional .sym companion file a linker or a
// second assembly pass can INCLUDE. A symbol exported but never given
// a value is skipped with a comment noting it, rather than emitting a
// bogus value.
func WriteSymbols(w io.Writer, exported []asm.ExportedSymbol) error {
	bw := bufio.NewWriter(w)
	names := append([]asm.ExportedSymbol(nil), exported...)
	sort.Slice(names, func(i, j int) bool { return names[i].Name < names[j].Name })

	for _, e := range names {
		if e.Value == nil || e.Value.Kind == asm.KindUndef {
			fmt.Fprintf(bw, "; %s is exported but was never defined\n", e.Name)
			continue
		}
		if e.Value.Kind != asm.KindInt {
			fmt.Fprintf(bw, "; %s is exported with a non-numeric value\n", e.Name)
			continue
		}
		fmt.Fprintf(bw, "%-24s EQU $%04X\n", e.Name, uint16(e.Value.Int))
	}
	return bw.Flush()
}

// WriteHex writes spans as Motorola S-record-free plain hex dump
// lines ("ADDR: b0 b1 b2 ..."), one span per run of output, for a
// human to read alongside the source. This is not the binary image
// format (see WriteBinary); it's the listing the interactive
// "listing" command prints.
func WriteHex(w io.Writer, spans []*asm.Span) error {
	bw := bufio.NewWriter(w)
	for _, sp := range spans {
		addr := sp.Put
		data := sp.Data
		for len(data) > 0 {
			n := len(data)
			if n > 8 {
				n = 8
			}
			fmt.Fprintf(bw, "%04X: ", addr)
			for i := 0; i < n; i++ {
				fmt.Fprintf(bw, "%02X ", data[i])
			}
			fmt.Fprintln(bw)
			addr += n
			data = data[n:]
		}
	}
	return bw.Flush()
}

// WriteBinary writes the coalesced output image as a raw flat binary,
// suitable for loading at the lowest span's Put address.
func WriteBinary(w io.Writer, spans []*asm.Span) error {
	bw := bufio.NewWriter(w)
	for _, sp := range spans {
		if _, err := bw.Write(sp.Data); err != nil {
			return err
		}
	}
	return bw.Flush()
}
