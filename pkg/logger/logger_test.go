package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestLevelsGoToTheirWriters(t *testing.T) {
	color.NoColor = true
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	t.Cleanup(func() { SetOutput(os.Stdout, os.Stderr) })

	LogInfo("draft %d created", 7)
	LogWarn("slow embed for %s", "https://vimeo.com/1")
	LogError("sendmail failed: %v", "exit 3")

	assert.Contains(t, out.String(), "[INFO] draft 7 created")
	assert.Contains(t, out.String(), "[WARN] slow embed for https://vimeo.com/1")
	assert.NotContains(t, out.String(), "sendmail")
	assert.Contains(t, errOut.String(), "[ERR] sendmail failed: exit 3")
}

func TestLogFatalExits(t *testing.T) {
	color.NoColor = true
	var errOut bytes.Buffer
	SetOutput(nil, &errOut)

	code := -1
	orig := exit
	exit = func(c int) { code = c }
	t.Cleanup(func() {
		exit = orig
		SetOutput(os.Stdout, os.Stderr)
	})

	LogFatal("database unreachable")

	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "[FATAL] database unreachable")
}
