package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// tjSpaceThreshold is the TJ displacement, in thousandths of text space, at or
// below which a gap is treated as a word break
const tjSpaceThreshold = -200

// textState is the part of the graphics and text state the fragment walker needs
type textState struct {
	font string
	size float64
	tm   [6]float64
}

var identity = [6]float64{1, 0, 0, 1, 0, 0}

// effectiveSize scales the nominal font size by the average of the text
// matrix's horizontal and vertical scale components
func (s textState) effectiveSize() float64 {
	return s.size * (s.tm[0] + s.tm[3]) / 2
}

// fragmentWalker visits every text-showing operator of a page's content stream
// and accumulates the page's plain text
type fragmentWalker struct {
	page     pdf.Page
	state    textState
	saved    []textState
	encoders map[string]pdf.TextEncoding
	visit    func(TextFragment)

	text strings.Builder
	gap  string // separator owed before the next fragment
}

// WalkFragments interprets page's content stream and calls visit once for
// every Tj, TJ, ' and " operator with the decoded text and its effective size.
// Panics raised by the content interpreter are returned as errors.
func WalkFragments(page pdf.Page, visit func(TextFragment)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("content stream: %v", r)
		}
	}()

	if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
		return nil
	}

	newFragmentWalker(page, visit).walk()
	return nil
}

// ExtractPage reads the plain text and the sized fragments of page in a single
// pass over its content stream.
//
// Fragments drawn without repositioning are concatenated. A horizontal Td/TD move
// separates them with a space, and a new text object, a line move or a new text
// matrix separates them with a newline. Kerning gaps inside a TJ array at or below
// tjSpaceThreshold become spaces.
func ExtractPage(page pdf.Page) (result *PageText, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("content stream: %v", r)
		}
	}()

	result = &PageText{}
	if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
		return result, nil
	}

	w := newFragmentWalker(page, func(f TextFragment) {
		result.Fragments = append(result.Fragments, f)
	})
	w.walk()
	result.Text = w.text.String()

	return result, nil
}

// CollectFragments returns every text fragment of page in content stream order
func CollectFragments(page pdf.Page) ([]TextFragment, error) {
	var fragments []TextFragment
	err := WalkFragments(page, func(f TextFragment) {
		fragments = append(fragments, f)
	})
	return fragments, err
}

func newFragmentWalker(page pdf.Page, visit func(TextFragment)) *fragmentWalker {
	return &fragmentWalker{
		page:     page,
		state:    textState{tm: identity},
		encoders: make(map[string]pdf.TextEncoding),
		visit:    visit,
	}
}

func (w *fragmentWalker) walk() {
	pdf.Interpret(w.page.V.Key("Contents"), w.do)
}

func (w *fragmentWalker) do(stk *pdf.Stack, op string) {
	n := stk.Len()
	args := make([]pdf.Value, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}

	switch op {
	case "q":
		w.saved = append(w.saved, w.state)
	case "Q":
		if len(w.saved) > 0 {
			w.state = w.saved[len(w.saved)-1]
			w.saved = w.saved[:len(w.saved)-1]
		}
	case "BT":
		w.state.tm = identity
		w.lineBreak()
	case "Td", "TD":
		if len(args) == 2 && args[1].Float64() != 0 {
			w.lineBreak()
		} else {
			w.wordBreak()
		}
	case "T*":
		w.lineBreak()
	case "Tf":
		if len(args) == 2 {
			w.state.font = args[0].Name()
			w.state.size = args[1].Float64()
		}
	case "Tm":
		if len(args) == 6 {
			for i := range w.state.tm {
				w.state.tm[i] = args[i].Float64()
			}
		}
		w.lineBreak()
	case "Tj":
		if len(args) == 1 {
			w.emit(w.decode(args[0].RawString()))
		}
	case "'":
		w.lineBreak()
		if len(args) == 1 {
			w.emit(w.decode(args[0].RawString()))
		}
	case "\"":
		w.lineBreak()
		if len(args) == 3 {
			w.emit(w.decode(args[2].RawString()))
		}
	case "TJ":
		if len(args) == 1 {
			w.emit(w.decodeArray(args[0]))
		}
	}
}

func (w *fragmentWalker) emit(text string) {
	if w.text.Len() > 0 {
		w.text.WriteString(w.gap)
	}
	w.gap = ""
	w.text.WriteString(text)

	w.visit(TextFragment{Text: text, FontSize: w.state.effectiveSize()})
}

func (w *fragmentWalker) lineBreak() {
	w.gap = "\n"
}

func (w *fragmentWalker) wordBreak() {
	if w.gap == "" {
		w.gap = " "
	}
}

func (w *fragmentWalker) decode(raw string) string {
	enc, ok := w.encoders[w.state.font]
	if !ok {
		enc = w.page.Font(w.state.font).Encoder()
		w.encoders[w.state.font] = enc
	}
	if enc == nil {
		return raw
	}
	return enc.Decode(raw)
}

func (w *fragmentWalker) decodeArray(v pdf.Value) string {
	var b strings.Builder
	for i := 0; i < v.Len(); i++ {
		x := v.Index(i)
		switch x.Kind() {
		case pdf.String:
			b.WriteString(w.decode(x.RawString()))
		case pdf.Integer, pdf.Real:
			if x.Float64() <= tjSpaceThreshold {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}
