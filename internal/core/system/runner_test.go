package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s recordingSystem) Phase() Phase           { return s.phase }
func (s recordingSystem) Update(_ time.Duration) { *s.log = append(*s.log, s.name) }

func TestRunner_PhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recordingSystem{"cleanup", PhaseCleanup, &log})
	r.Register(recordingSystem{"turn", PhaseUpdate, &log})
	r.Register(recordingSystem{"events", PhasePreUpdate, &log})
	r.Register(recordingSystem{"spawn", PhaseUpdate, &log})
	r.Register(recordingSystem{"death", PhasePostUpdate, &log})

	r.Tick(time.Second)

	assert.Equal(t, []string{"events", "turn", "spawn", "death", "cleanup"}, log)
	assert.Equal(t, uint64(1), r.Turns())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "cleanup", PhaseCleanup.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
