package telemetry

// FakePublisher records published snapshots for testing.
type FakePublisher struct {
	Published []Snapshot
	Err       error
	Closed    bool
	OnCall    func(name string)
}

func (f *FakePublisher) Publish(s Snapshot) error {
	f.Published = append(f.Published, s)
	if f.OnCall != nil {
		f.OnCall("telemetry.Publish")
	}
	return f.Err
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}
