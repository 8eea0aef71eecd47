package asm

import (
	"sort"
)

// A Span is a contiguous, independently relocatable run of assembled
// bytes. Org is the logical address the
// bytes were assembled for, Put is where they land in the output
// image, ordinarily equal to Org but diverging after PUT. Sequence
// breaks ties when spans with overlapping Put ranges are merged: the
// span with the higher Sequence wins for any byte position both cover.
type Span struct {
	Sequence int
	Org      int
	Put      int
	Data     []byte
}

// Size is the number of bytes the span currently holds.
func (s *Span) Size() int { return len(s.Data) }

// A Section is a named, independently addressed region of the
// program. Each section tracks its own program counter, direct-page
// register, and numeric local-label table.
type Section struct {
	Name        string
	Spans       []*Span
	cur         *Span
	Locals      *LocalTable
	Pass        int
	LineNumber  int
	PC          int
	put         int // base 'put' address assigned to the next new span
	DP          int // -1 means invalid/unset
	LastPC      int
	branchSize  map[int]int
	nextSeq     func() int
}

func newSection(name string, nextSeq func() int) *Section {
	return &Section{
		Name:       name,
		Locals:     NewLocalTable(),
		DP:         -1,
		branchSize: make(map[int]int),
		nextSeq:    nextSeq,
	}
}

// BranchSizeFor returns the operand size (in bytes) to assume for the
// direct/extended-ambiguous instruction at source line, given the size
// the dispatcher would otherwise pick this pass (want). Size estimates
// must be monotone non-increasing across passes so that the pass loop
// converges instead of oscillating between a
// short and long encoding: once a line has been assembled at a given
// size, a later pass may only keep it or shrink it, never grow it back.
// (Despite the name, this serves any line whose encoded size can vary
// by pass, not only relative branches — 6809 branch mnemonics are
// fixed-size, see AssembleBranch, but Direct-vs-Extended selection is
// not.)
func (s *Section) BranchSizeFor(line, want int) int {
	if prev, ok := s.branchSize[line]; ok && want > prev {
		return prev
	}
	return want
}

// RecordBranchSize stores the size actually used for the
// size-ambiguous instruction at source line, for BranchSizeFor to
// consult on the next pass.
func (s *Section) RecordBranchSize(line, size int) {
	if prev, ok := s.branchSize[line]; !ok || size < prev {
		s.branchSize[line] = size
	}
}

// resetForPass re-initializes a section's span list when the pass
// number it was last seen on differs from the current pass: the span
// list is destroyed, and its pc defaults to whatever section was
// active last (pc), unless overridden by a subsequent ORG.
func (s *Section) resetForPass(pass, pc int) {
	s.Spans = nil
	s.cur = nil
	// s.Locals is deliberately NOT reset here, for the same reason
	// SymbolTable.ResetPass leaves global symbol values alone: a
	// forward NF reference converges only because it can still see
	// the previous pass's entry until this pass overwrites it.
	s.Pass = pass
	s.LineNumber = 0
	s.PC = pc
	s.put = pc
	s.LastPC = pc
}

// SetPC sets the program counter directly (ORG, or after a label that
// defines an address). It does not itself allocate a span; a new span
// is allocated lazily on the next Emit if PC no longer matches
// org+size of the current span.
func (s *Section) SetPC(pc int) {
	s.PC = pc
	s.put = pc
	s.LastPC = pc
}

// Advance moves the program counter forward by n bytes without
// emitting any data (RMB).
func (s *Section) Advance(n int) {
	s.PC += n
	s.put += n
	s.LastPC = s.PC
}

// SetPut sets the 'put' base that will be assigned to the next span
// allocated by Emit, implementing the PUT directive: a new span must
// have a put distinct from org on its next emission. It forces a
// fresh span even if PC otherwise still matches the current span's
// org+size.
func (s *Section) SetPut(put int) {
	s.put = put
	s.cur = nil // force a new span with the updated put base
}

// Emit appends data to the current span, allocating a new one first
// if the program counter no longer lines up with the current span.
// It returns the address the data was assembled at.
func (s *Section) Emit(data []byte) int {
	addr := s.PC
	if s.cur == nil || s.PC != s.cur.Org+s.cur.Size() {
		s.cur = &Span{Sequence: s.nextSeq(), Org: s.PC, Put: s.put}
		s.Spans = append(s.Spans, s.cur)
	}
	s.cur.Data = append(s.cur.Data, data...)
	s.PC += len(data)
	s.LastPC = s.PC
	s.put += len(data)
	return addr
}

// EmitPad appends n zero bytes, counting toward size with defined
// zero content ("pad" emit type, used by RZB, and by FCB/FDB and the
// instruction encoders when an argument is still Undef).
func (s *Section) EmitPad(n int) int {
	return s.Emit(make([]byte, n))
}

// Coalesce merges adjacent spans whose Put ranges abut. If sort is
// true, spans are ordered by Put first. If pad is
// true, gaps between non-adjacent spans are filled with zero bytes
// (the resulting section has no gaps at all, only one span per
// previously disjoint run). Coalesce returns a new slice; it does not
// modify s.Spans.
func Coalesce(spans []*Span, doSort, pad bool) []*Span {
	spans = append([]*Span(nil), spans...)
	if len(spans) == 0 {
		return spans
	}
	if doSort {
		sort.SliceStable(spans, func(i, j int) bool { return spans[i].Put < spans[j].Put })
	}

	var out []*Span
	cur := &Span{Sequence: spans[0].Sequence, Org: spans[0].Org, Put: spans[0].Put, Data: append([]byte(nil), spans[0].Data...)}
	for _, sp := range spans[1:] {
		end := cur.Put + cur.Size()
		switch {
		case sp.Put == end:
			cur.Data = append(cur.Data, sp.Data...)
			if sp.Sequence > cur.Sequence {
				cur.Sequence = sp.Sequence
			}
		case pad && sp.Put > end:
			cur.Data = append(cur.Data, make([]byte, sp.Put-end)...)
			cur.Data = append(cur.Data, sp.Data...)
			if sp.Sequence > cur.Sequence {
				cur.Sequence = sp.Sequence
			}
		default:
			out = append(out, cur)
			cur = &Span{Sequence: sp.Sequence, Org: sp.Org, Put: sp.Put, Data: append([]byte(nil), sp.Data...)}
		}
	}
	out = append(out, cur)
	return out
}

// CoalesceAll merges the spans of every section in sections into a
// single sorted, non-overlapping byte image. Overlap is resolved by
// Sequence: the span with the highest sequence covering a byte
// position wins that position, so every byte is assigned by exactly
// one span — the one with maximal sequence containing that offset.
func CoalesceAll(sections []*Section, pad bool) []*Span {
	var all []*Span
	for _, sec := range sections {
		all = append(all, sec.Spans...)
	}
	if len(all) == 0 {
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Put != all[j].Put {
			return all[i].Put < all[j].Put
		}
		return all[i].Sequence < all[j].Sequence
	})

	lo, hi := all[0].Put, all[0].Put
	for _, sp := range all {
		if sp.Put < lo {
			lo = sp.Put
		}
		if sp.Put+sp.Size() > hi {
			hi = sp.Put + sp.Size()
		}
	}

	owner := make([]*Span, hi-lo)
	ownerSeq := make([]int, hi-lo)
	for i := range ownerSeq {
		ownerSeq[i] = -1
	}
	for _, sp := range all {
		for i := 0; i < sp.Size(); i++ {
			pos := sp.Put + i - lo
			if sp.Sequence >= ownerSeq[pos] {
				owner[pos] = sp
				ownerSeq[pos] = sp.Sequence
			}
		}
	}

	data := make([]byte, hi-lo)
	written := make([]bool, hi-lo)
	for _, sp := range all {
		for i := 0; i < sp.Size(); i++ {
			pos := sp.Put + i - lo
			if owner[pos] == sp {
				data[pos] = sp.Data[i]
				written[pos] = true
			}
		}
	}
	if pad {
		// gaps already default to zero
	} else {
		// trim leading/trailing unwritten bytes only; interior gaps
		// are reported as-is (callers that need strict contiguity
		// should pass pad=true).
		start := 0
		for start < len(written) && !written[start] {
			start++
		}
		end := len(written)
		for end > start && !written[end-1] {
			end--
		}
		data = data[start:end]
		lo += start
	}

	if len(data) == 0 {
		return nil
	}
	return []*Span{{Sequence: 0, Org: lo, Put: lo, Data: data}}
}
