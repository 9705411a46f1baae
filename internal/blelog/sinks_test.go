package blelog

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerTagsComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	prevOut := log.Writer()
	prevFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	}()

	l := New("adapter")
	l.Debugf("powering on %s", "hci0")

	assert.True(t, strings.Contains(buf.String(), "[DEBUG] adapter: powering on hci0"))
}

func TestOrDefaultFallsBackWhenNonPositive(t *testing.T) {
	assert.Equal(t, 10, orDefault(0, 10))
	assert.Equal(t, 10, orDefault(-1, 10))
	assert.Equal(t, 7, orDefault(7, 10))
}
