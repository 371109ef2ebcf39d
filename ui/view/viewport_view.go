package view

import (
	"image"

	"github.com/soocke/probedoc-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ViewportView shows composed frames and reports pointer, key and size events.
type ViewportView interface {
	ShowFrame(img image.Image)
	Reset()
}

// PointerHandlers receives viewport input in label-local pixels.
type PointerHandlers struct {
	Press, Drag, Release, Motion func(image.Point)
	KeyPress, KeyRelease         func(keysym string)
	Resize                       func(w, h int)
	FocusOut                     func()
}

type viewportView struct {
	label     *LabelWidget
	prevPhoto *Img // last Tk photo image instance shown
	w, h      int
}

// NewViewportView creates the frame label at row and wires its bindings.
// The label takes keyboard focus on press so typing in the toolbar does not scroll.
func NewViewportView(row, w, h int, hs PointerHandlers) ViewportView {
	photo := NewPhoto(Data(images.Placeholder(w, h)))
	label := Label(Image(photo), Borderwidth(0), Highlightthickness(0), Padx(0), Pady(0), Anchor("nw"))
	Grid(label, Row(row), Column(0), Columnspan(2), Sticky("nsew"))
	v := &viewportView{label: label, prevPhoto: photo, w: w, h: h}
	pt := func(e *Event) image.Point { return image.Pt(e.X, e.Y) }
	Bind(label, "<ButtonPress-1>", Command(func(e *Event) {
		Focus(label)
		if hs.Press != nil {
			hs.Press(pt(e))
		}
	}))
	Bind(label, "<B1-Motion>", Command(func(e *Event) {
		if hs.Drag != nil {
			hs.Drag(pt(e))
		}
	}))
	Bind(label, "<ButtonRelease-1>", Command(func(e *Event) {
		if hs.Release != nil {
			hs.Release(pt(e))
		}
	}))
	Bind(label, "<Motion>", Command(func(e *Event) {
		if hs.Motion != nil {
			hs.Motion(pt(e))
		}
	}))
	Bind(label, "<KeyPress>", Command(func(e *Event) {
		if hs.KeyPress != nil {
			hs.KeyPress(e.Keysym)
		}
	}))
	Bind(label, "<KeyRelease>", Command(func(e *Event) {
		if hs.KeyRelease != nil {
			hs.KeyRelease(e.Keysym)
		}
	}))
	Bind(label, "<FocusOut>", Command(func() {
		if hs.FocusOut != nil {
			hs.FocusOut()
		}
	}))
	Bind(label, "<Configure>", Command(func(e *Event) {
		if hs.Resize != nil && e.Width > 1 && e.Height > 1 {
			hs.Resize(e.Width, e.Height)
		}
	}))
	return v
}

// ShowFrame replaces the shown photo, deleting the previous one so obsolete
// pixel buffers are not retained by Tk.
func (v *viewportView) ShowFrame(img image.Image) {
	if v == nil || v.label == nil || img == nil {
		return
	}
	pngBytes := images.EncodePNG(img)
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	newPhoto := NewPhoto(Data(pngBytes))
	v.prevPhoto = newPhoto
	v.label.Configure(Image(newPhoto))
}

func (v *viewportView) Reset() {
	if v == nil || v.label == nil {
		return
	}
	if v.prevPhoto != nil {
		v.prevPhoto.Delete()
	}
	v.prevPhoto = NewPhoto(Data(images.Placeholder(v.w, v.h)))
	v.label.Configure(Image(v.prevPhoto))
}
