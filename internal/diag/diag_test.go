package diag

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_GatesBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarning)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	assert.Empty(t, buf.String())

	l.Warningf("warn %d", 3)
	assert.Contains(t, buf.String(), "[WARNING] warn 3")
}

func TestLogger_FormatsLevelPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Errorf("boom: %s", "oops")
	assert.Equal(t, "[ERROR] boom: oops\n", buf.String())
}
