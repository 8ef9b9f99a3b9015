package cmd

import (
	"bytes"
	"testing"

	"comicarr/internal/buildinfo"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	assert.Contains(t, out, "Version: "+buildinfo.Version)
	assert.Contains(t, out, "Build date: "+buildinfo.Date)
	assert.NotContains(t, out, "Update available")
	assert.NotContains(t, out, "github.com")
}
