package sigdag

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/canzero/sigdag/kdag"
	"github.com/canzero/sigdag/mapping"
	"github.com/canzero/sigdag/ports"
	"github.com/canzero/sigdag/value"
)

type fakeSource struct {
	batches [][]ports.Update
}

func (f *fakeSource) Initialize(ctx context.Context) error   { return nil }
func (f *fakeSource) RequiredInputs(inputs []mapping.Source) {}
func (f *fakeSource) Stop() error                             { return nil }
func (f *fakeSource) Poll() ([]ports.Update, error) {
	if len(f.batches) == 0 {
		return nil, nil
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

type fakeSink struct {
	published []ports.Emission
}

func (f *fakeSink) Resolve(path string) (ports.Handle, error) { return path, nil }
func (f *fakeSink) Publish(handle ports.Handle, v value.Value) error {
	f.published = append(f.published, ports.Emission{Path: handle.(string), Value: v})
	return nil
}

func TestAppStopBeforeRunIsSafe(t *testing.T) {
	dag, err := kdag.Build([]mapping.Mapping{
		{Name: "Speed", Source: &mapping.Source{Type: "can", Name: "Speed"}, DataType: value.Float, Transform: mapping.DirectTransform()},
	})
	assert.NoError(t, err)

	app, err := New(dag, &fakeSource{}, &fakeSink{})
	assert.NoError(t, err)

	app.Stop()
}

func TestAppRunProcessesOneUpdateAndStops(t *testing.T) {
	dag, err := kdag.Build([]mapping.Mapping{
		{Name: "Speed", Source: &mapping.Source{Type: "can", Name: "Speed"}, DataType: value.Float, Transform: mapping.DirectTransform()},
	})
	assert.NoError(t, err)

	src := &fakeSource{batches: [][]ports.Update{
		{{Source: mapping.Source{Type: "can", Name: "Speed"}, Value: value.FloatValue(42.0), TS: time.Now()}},
	}}
	sink := &fakeSink{}

	app, err := New(dag, src, sink, WithPollInterval(time.Millisecond), WithTickInterval(5*time.Millisecond))
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = app.Run(ctx)
	assert.NoError(t, err)
	assert.True(t, len(sink.published) >= 1)
}
