package gpio

import "fmt"

// FakeLine is a Line returning scripted values. Once Values is exhausted the
// last value repeats.
type FakeLine struct {
	Values []int
	Err    error
	Set    []int
	Closed bool

	index int
}

func (f *FakeLine) Value() (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if len(f.Values) == 0 {
		return 0, nil
	}
	v := f.Values[f.index]
	if f.index < len(f.Values)-1 {
		f.index++
	}
	return v, nil
}

func (f *FakeLine) SetValue(value int) error {
	f.Set = append(f.Set, value)
	return f.Err
}

func (f *FakeLine) Close() error {
	f.Closed = true
	return nil
}

// FakeChip hands out FakeLines and records each request, e.g.
// "gpio.Input(17, low)".
type FakeChip struct {
	Lines  map[int]*FakeLine
	Calls  []string
	OnCall func(name string)
}

func (f *FakeChip) record(format string, a ...interface{}) {
	call := fmt.Sprintf(format, a...)
	f.Calls = append(f.Calls, call)
	if f.OnCall != nil {
		f.OnCall(call)
	}
}

func (f *FakeChip) line(pin int) *FakeLine {
	if f.Lines == nil {
		f.Lines = map[int]*FakeLine{}
	}
	l, ok := f.Lines[pin]
	if !ok {
		l = &FakeLine{}
		f.Lines[pin] = l
	}
	return l
}

func (f *FakeChip) Input(pin int, pull Level) (Line, error) {
	f.record("gpio.Input(%d, %s)", pin, pull)
	return f.line(pin), nil
}

func (f *FakeChip) Output(pin int, value Level) (Line, error) {
	f.record("gpio.Output(%d, %s)", pin, value)
	l := f.line(pin)
	return l, l.SetValue(int(value))
}

func (f *FakeChip) Release(pin int) error {
	f.record("gpio.Release(%d)", pin)
	if l, ok := f.Lines[pin]; ok {
		delete(f.Lines, pin)
		return l.Close()
	}
	return nil
}
