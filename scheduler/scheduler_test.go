package scheduler

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/go-logr/logr"

	"github.com/canzero/sigdag/kdag"
	"github.com/canzero/sigdag/mapping"
	"github.com/canzero/sigdag/ports"
	"github.com/canzero/sigdag/value"
)

func mustBuild(t *testing.T, ms []mapping.Mapping) *Processor {
	t.Helper()
	dag, err := kdag.Build(ms)
	assert.NoError(t, err)
	p, err := New(dag, logr.Discard())
	assert.NoError(t, err)
	return p
}

func upd(typ, name string, v value.Value, ts time.Time) ports.Update {
	return ports.Update{Source: mapping.Source{Type: typ, Name: name}, Value: v, TS: ts}
}

func TestDirectPassThrough(t *testing.T) {
	// S1
	p := mustBuild(t, []mapping.Mapping{
		{Name: "VehSpeed", Source: &mapping.Source{Type: "can", Name: "VehSpeed"}, DataType: value.Float, Transform: mapping.DirectTransform()},
		{Name: "Speed", DependsOn: []string{"VehSpeed"}, DataType: value.Float, Transform: mapping.DirectTransform()},
	})

	now := time.Unix(0, 0)
	ems := p.Process([]ports.Update{upd("can", "VehSpeed", value.FloatValue(42.0), now)}, now)

	var speedEm *ports.Emission
	for i := range ems {
		if ems[i].Path == "Speed" {
			speedEm = &ems[i]
		}
	}
	assert.True(t, speedEm != nil)
	f, _ := speedEm.Value.AsFloat64()
	assert.Equal(t, 42.0, f)
}

func TestCodeTransform(t *testing.T) {
	// S2
	p := mustBuild(t, []mapping.Mapping{
		{Name: "SpeedMs", Source: &mapping.Source{Type: "can", Name: "SpeedMs"}, DataType: value.Double, Transform: mapping.DirectTransform()},
		{Name: "SpeedKmh", DependsOn: []string{"SpeedMs"}, DataType: value.Float, Transform: mapping.CodeTransform("SpeedMs * 3.6")},
	})

	now := time.Unix(0, 0)
	ems := p.Process([]ports.Update{upd("can", "SpeedMs", value.DoubleValue(10.0), now)}, now)

	assert.Equal(t, 2, len(ems))
	f, _ := ems[1].Value.AsFloat64()
	assert.Equal(t, float64(float32(36.0)), f)
}

func TestValueMap(t *testing.T) {
	// S3
	p := mustBuild(t, []mapping.Mapping{
		{Name: "GearRaw", Source: &mapping.Source{Type: "can", Name: "GearRaw"}, DataType: value.Int32, Transform: mapping.DirectTransform()},
		{
			Name: "Gear", DependsOn: []string{"GearRaw"}, DataType: value.String,
			Transform: mapping.ValueMapTransform(map[string]string{"0": "P", "1": "R", "2": "N", "3": "D"}),
		},
	})

	now := time.Unix(0, 0)

	ems := p.Process([]ports.Update{upd("can", "GearRaw", value.IntValue(value.Int32, 2), now)}, now)
	assert.Equal(t, "N", gearOf(ems))

	now = now.Add(time.Millisecond)
	ems = p.Process([]ports.Update{upd("can", "GearRaw", value.IntValue(value.Int32, 3), now)}, now)
	assert.Equal(t, "D", gearOf(ems))

	now = now.Add(time.Millisecond)
	ems = p.Process([]ports.Update{upd("can", "GearRaw", value.IntValue(value.Int32, 9), now)}, now)
	assert.Equal(t, "", gearOf(ems))
}

func gearOf(ems []ports.Emission) string {
	for _, e := range ems {
		if e.Path == "Gear" {
			return e.Value.Str
		}
	}
	return ""
}

func TestThrottledPeriodic(t *testing.T) {
	// S4
	p := mustBuild(t, []mapping.Mapping{
		{Name: "Speed", Source: &mapping.Source{Type: "can", Name: "Speed"}, DataType: value.Double, Transform: mapping.DirectTransform()},
		{
			Name: "HeartbeatSpeed", DependsOn: []string{"Speed"}, DataType: value.Double,
			Transform: mapping.DirectTransform(), UpdateTrigger: mapping.Both, IntervalMS: 1000,
		},
	})

	base := time.Unix(0, 0)

	ems := p.Process([]ports.Update{upd("can", "Speed", value.DoubleValue(1.0), base)}, base)
	assert.True(t, hasPath(ems, "HeartbeatSpeed"))

	t500 := base.Add(500 * time.Millisecond)
	ems = p.Process([]ports.Update{upd("can", "Speed", value.DoubleValue(2.0), t500)}, t500)
	assert.False(t, hasPath(ems, "HeartbeatSpeed"))

	t1000 := base.Add(1000 * time.Millisecond)
	ems = p.Process(nil, t1000)
	assert.True(t, hasPath(ems, "HeartbeatSpeed"))
}

func hasPath(ems []ports.Emission, path string) bool {
	for _, e := range ems {
		if e.Path == path {
			return true
		}
	}
	return false
}

func TestInvalidityPropagation(t *testing.T) {
	// S5
	p := mustBuild(t, []mapping.Mapping{
		{Name: "A", Source: &mapping.Source{Type: "can", Name: "A"}, DataType: value.Bool, Transform: mapping.DirectTransform()},
		{Name: "B", DependsOn: []string{"A"}, DataType: value.Bool, Transform: mapping.CodeTransform("A && true")},
	})

	now := time.Unix(0, 0)
	ems := p.Process([]ports.Update{upd("can", "A", value.Value{Kind: value.Bool, Valid: false}, now)}, now)
	assert.False(t, hasPath(ems, "B"))

	now = now.Add(time.Millisecond)
	ems = p.Process([]ports.Update{upd("can", "A", value.BoolValue(true), now)}, now)
	assert.True(t, hasPath(ems, "B"))
	for _, e := range ems {
		if e.Path == "B" {
			assert.True(t, e.Value.Bool)
		}
	}
}

func TestStructAssembly(t *testing.T) {
	// S6
	p := mustBuild(t, []mapping.Mapping{
		{Name: "FloatX", Source: &mapping.Source{Type: "can", Name: "FloatX"}, DataType: value.Float, Transform: mapping.DirectTransform()},
		{Name: "FloatY", Source: &mapping.Source{Type: "can", Name: "FloatY"}, DataType: value.Float, Transform: mapping.DirectTransform()},
		{
			Name: "Pose", DependsOn: []string{"FloatX", "FloatY"}, DataType: value.Struct,
			IsStruct: true, StructType: "Pose", UpdateTrigger: mapping.OnDependency,
			StructFieldAlias: map[string]string{"FloatX": "x", "FloatY": "y"},
		},
	})

	now := time.Unix(0, 0)
	ems := p.Process([]ports.Update{
		upd("can", "FloatX", value.FloatValue(1.0), now),
		upd("can", "FloatY", value.FloatValue(2.0), now),
	}, now)

	pose := poseOf(ems)
	assert.True(t, pose != nil)
	assert.Equal(t, 2, len(pose.Fields))

	now = now.Add(time.Millisecond)
	ems = p.Process([]ports.Update{upd("can", "FloatX", value.FloatValue(3.0), now)}, now)
	pose = poseOf(ems)
	assert.True(t, pose != nil)
	assert.Equal(t, "x", pose.Fields[0].Name)
	f, _ := pose.Fields[0].Value.AsFloat64()
	assert.Equal(t, float64(float32(3.0)), f)
}

func poseOf(ems []ports.Emission) *value.Value {
	for i := range ems {
		if ems[i].Path == "Pose" {
			return &ems[i].Value
		}
	}
	return nil
}
