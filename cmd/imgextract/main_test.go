package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, dir string) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: 40, B: 200, A: 255})
		}
	}
	path := filepath.Join(dir, "sample.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := newRootCmd(viper.New())
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLI_ExtractRaw(t *testing.T) {
	dir := t.TempDir()
	src := writeSample(t, dir)
	out := filepath.Join(dir, "out.raw")

	_, stderr, err := run(t, "extract", src, "-w", "4", "-o", out, "--digest")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, data, 4*2*4)
	assert.Contains(t, stderr, "xxh64 ")
	assert.Contains(t, stderr, "out.raw")
}

func TestCLI_ExtractToStdout(t *testing.T) {
	src := writeSample(t, t.TempDir())

	stdout, _, err := run(t, "extract", src, "--width", "2")
	require.NoError(t, err)
	assert.Len(t, stdout, 2*1*4)
}

func TestCLI_RidgePNG(t *testing.T) {
	dir := t.TempDir()
	src := writeSample(t, dir)
	out := filepath.Join(dir, "ridge.png")

	_, _, err := run(t, "ridge", src, "-w", "8", "-o", out)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.IsType(t, &image.Gray{}, img)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
}

func TestCLI_ProcessSummary(t *testing.T) {
	dir := t.TempDir()
	src := writeSample(t, dir)
	out := filepath.Join(dir, "frame.png")

	stdout, _, err := run(t, "process", src, "-w", "4", "--ridge", "--digest", "-o", out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "pixels 4x2 4ch 32 B"))
	assert.True(t, strings.HasPrefix(lines[1], "ridge  4x2 1ch 8 B"))
	assert.Contains(t, lines[0], "xxh64=")

	assert.FileExists(t, out)
	assert.FileExists(t, filepath.Join(dir, "frame.ridge.png"))
}

func TestCLI_TextureUnsupported(t *testing.T) {
	_, stderr, err := run(t, "texture", "12")
	require.NoError(t, err)
	assert.Contains(t, stderr, "not supported")

	_, _, err = run(t, "texture", "abc")
	assert.Error(t, err)
}

func TestCLI_Errors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, "extract", filepath.Join(dir, "missing.png"), "-o", filepath.Join(dir, "out.raw"))
	assert.Error(t, err)

	_, _, err = run(t, "extract", writeSample(t, dir), "--filter", "bicubic")
	assert.Error(t, err)

	_, _, err = run(t, "extract")
	assert.Error(t, err)
}

func TestCLI_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("IMGEXTRACT_WIDTH", "2")
	src := writeSample(t, t.TempDir())

	stdout, _, err := run(t, "extract", src)
	require.NoError(t, err)
	assert.Len(t, stdout, 2*1*4)
}

func TestCLI_RidgePath(t *testing.T) {
	assert.Equal(t, "a/out.ridge.png", ridgePath("a/out.png"))
	assert.Equal(t, "out.ridge", ridgePath("out"))
}
