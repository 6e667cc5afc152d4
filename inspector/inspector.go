// Package inspector provides a read-only TUI for browsing an assembled
// image: the listing, the symbol table and a hex dump of the emitted
// regions.
package inspector

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lokuciejewski/nox-asm/loader"
	"github.com/lokuciejewski/nox-asm/parser"
)

// Inspector represents the text user interface over one assembly result
type Inspector struct {
	App        *tview.Application
	MainLayout *tview.Flex

	ListingView *tview.TextView
	SymbolView  *tview.TextView
	MemoryView  *tview.TextView

	assembler    *loader.Assembler
	bytesPerLine int
	contextLines int

	focusOrder []tview.Primitive
	focusIndex int
}

// New creates an inspector for a completed assembly run
func New(asm *loader.Assembler, bytesPerLine, contextLines int) *Inspector {
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}
	if contextLines < 0 {
		contextLines = 0
	}

	ins := &Inspector{
		App:          tview.NewApplication(),
		assembler:    asm,
		bytesPerLine: bytesPerLine,
		contextLines: contextLines,
	}

	ins.initializeViews()
	ins.buildLayout()
	ins.setupKeyBindings()
	ins.refreshAll()

	return ins
}

// initializeViews creates all the view panels
func (ins *Inspector) initializeViews() {
	ins.ListingView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	ins.ListingView.SetBorder(true).SetTitle(" Listing ")

	ins.SymbolView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	ins.SymbolView.SetBorder(true).SetTitle(" Symbols ")

	ins.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	ins.MemoryView.SetBorder(true).SetTitle(" Image ")
}

// buildLayout constructs the inspector layout
func (ins *Inspector) buildLayout() {
	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ins.ListingView, 0, 3, true).
		AddItem(ins.SymbolView, 0, 1, false)

	ins.MainLayout = tview.NewFlex().
		AddItem(left, 0, 1, true).
		AddItem(ins.MemoryView, 0, 1, false)

	ins.focusOrder = []tview.Primitive{ins.ListingView, ins.SymbolView, ins.MemoryView}
}

// setupKeyBindings wires the global key handling
func (ins *Inspector) setupKeyBindings() {
	ins.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			ins.App.Stop()
			return nil
		case tcell.KeyTab:
			ins.focusIndex = (ins.focusIndex + 1) % len(ins.focusOrder)
			ins.App.SetFocus(ins.focusOrder[ins.focusIndex])
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				ins.App.Stop()
				return nil
			}
		}
		return event
	})
}

// refreshAll renders every panel once; the underlying data never changes
func (ins *Inspector) refreshAll() {
	var listing strings.Builder
	if err := ins.assembler.WriteListing(&listing, 8); err == nil {
		ins.ListingView.SetText(listing.String())
	}

	ins.SymbolView.SetText(FormatSymbols(ins.assembler.Symbols()))
	ins.MemoryView.SetText(FormatHexDump(ins.assembler.Image(), ins.assembler.Spans(), ins.bytesPerLine, ins.contextLines))
}

// Run starts the inspector event loop and blocks until the user quits
func (ins *Inspector) Run() error {
	return ins.App.SetRoot(ins.MainLayout, true).Run()
}

// FormatSymbols renders the symbol table sorted by address
func FormatSymbols(symbols *parser.SymbolTable) string {
	if symbols.Len() == 0 {
		return "(no labels defined)\n"
	}

	var sb strings.Builder
	for _, sym := range symbols.All() {
		sb.WriteString(fmt.Sprintf("0x%04X  %s\n", sym.Address, sym.Name))
	}
	return sb.String()
}

// FormatHexDump renders the populated regions of the image with a little
// zero-context on both sides of each region. Untouched stretches between
// regions collapse into a separator line.
func FormatHexDump(img *loader.Image, spans []loader.LineSpan, bytesPerLine, contextLines int) string {
	if bytesPerLine <= 0 {
		bytesPerLine = 16
	}

	rows := make(map[int]bool)
	for _, span := range spans {
		if span.Size == 0 {
			continue
		}
		first := span.Address / bytesPerLine
		last := (span.Address + span.Size - 1) / bytesPerLine
		for row := first - contextLines; row <= last+contextLines; row++ {
			if row >= 0 && row*bytesPerLine < loader.ImageSize {
				rows[row] = true
			}
		}
	}

	if len(rows) == 0 {
		return "(empty image)\n"
	}

	var sb strings.Builder
	previous := -2
	for row := 0; row*bytesPerLine < loader.ImageSize; row++ {
		if !rows[row] {
			continue
		}
		if previous >= 0 && row != previous+1 {
			sb.WriteString("  ...\n")
		}
		previous = row

		addr := row * bytesPerLine
		sb.WriteString(fmt.Sprintf("%04X  ", addr))
		var ascii strings.Builder
		for i := 0; i < bytesPerLine && addr+i < loader.ImageSize; i++ {
			b, err := img.ReadByte(addr + i)
			if err != nil {
				break
			}
			sb.WriteString(fmt.Sprintf("%02X ", b))
			if b >= 0x20 && b < 0x7F {
				ascii.WriteByte(b)
			} else {
				ascii.WriteByte('.')
			}
		}
		sb.WriteString(" |")
		sb.WriteString(ascii.String())
		sb.WriteString("|\n")
	}

	return sb.String()
}
