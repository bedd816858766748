package display

import "image"

type RenderCall struct {
	Primary      string
	Secondary    string
	SecondaryPos image.Point
}

// FakeRenderer records what would have been drawn.
type FakeRenderer struct {
	Calls  []RenderCall
	Err    error
	OnCall func(name string)
}

func (f *FakeRenderer) Render(primary, secondary string, secondaryPos image.Point) error {
	f.Calls = append(f.Calls, RenderCall{Primary: primary, Secondary: secondary, SecondaryPos: secondaryPos})
	if f.OnCall != nil {
		f.OnCall("display.Render")
	}
	return f.Err
}
