package volume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosixNormalizePath(t *testing.T) {
	p := PosixPlatform{}

	got, err := p.NormalizePath("/mnt/backups/../backups/vol1/")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/backups/vol1", got)

	_, err = p.NormalizePath("relative/path")
	assert.Error(t, err)
}

func TestPosixMountCommand(t *testing.T) {
	p := PosixPlatform{}

	cmd := p.MountCommand("cifs", "//srv/share", "/mnt/vol1", []string{"user=bob", "ro"})
	assert.Equal(t, "mount", cmd.Name)
	assert.Equal(t, []string{"-t", "cifs", "//srv/share", "/mnt/vol1", "-o", "user=bob,ro"}, cmd.Args)

	cmd = p.MountCommand("nfs", "srv:/export", "/mnt/vol2", nil)
	assert.Equal(t, []string{"-t", "nfs", "srv:/export", "/mnt/vol2"}, cmd.Args)
}

func TestPosixUnmountCommand(t *testing.T) {
	p := PosixPlatform{}

	assert.Equal(t, []string{"/mnt/vol1"}, p.UnmountCommand("/mnt/vol1", false).Args)
	assert.Equal(t, []string{"-f", "/mnt/vol1"}, p.UnmountCommand("/mnt/vol1", true).Args)
}

func TestWindowsNormalizePath(t *testing.T) {
	p := WindowsPlatform{}

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: `C:\Users\backups`, want: `C:\Users\backups`},
		{in: "C:/Users//backups/", want: `C:\Users\backups`},
		{in: `C:\`, want: `C:\`},
		{in: `\\server\share\sub`, want: `\\server\share\sub`},
		{in: "//server/share", want: `\\server\share`},
		{in: "C:", wantErr: true},
		{in: "C:relative", wantErr: true},
		{in: "/unix/path", wantErr: true},
		{in: "plain", wantErr: true},
	}

	for _, tt := range tests {
		got, err := p.NormalizePath(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBuildUNCPath(t *testing.T) {
	p := WindowsPlatform{}

	assert.Equal(t, `\\srv\share`, p.BuildUNCPath("srv", "share", ""))
	assert.Equal(t, `\\srv\share\a\b`, p.BuildUNCPath("srv", "share", "a/b"))
	assert.Equal(t, `\\srv\share\a`, p.BuildUNCPath("srv", "share", "/a/"))
}

func TestWindowsConnectCommand(t *testing.T) {
	p := WindowsPlatform{}

	cmd := p.ConnectCommand(`\\srv\share`, "bob", "CORP", "hunter2")
	assert.Equal(t, "net", cmd.Name)
	assert.Equal(t, []string{"use", `\\srv\share`, "hunter2", `/user:CORP\bob`, "/persistent:no"}, cmd.Args)

	cmd = p.ConnectCommand(`\\srv\share`, "bob", "", "hunter2")
	assert.True(t, hasArg(cmd.Args, "/user:bob"))

	// Credentials never persist across reboots.
	assert.True(t, hasArg(cmd.Args, "/persistent:no"))
}

func TestWindowsDisconnectCommand(t *testing.T) {
	cmd := WindowsPlatform{}.DisconnectCommand(`\\srv\share`)
	assert.Equal(t, "net", cmd.Name)
	assert.Equal(t, strings.Join(cmd.Args, " "), `use \\srv\share /delete /y`)
}
