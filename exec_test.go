package eyeson

import (
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eyeson-art/eyeson/utils"
	"github.com/stretchr/testify/assert"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("could not create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("could not encode %s: %v", path, err)
	}
}

func quietProcessor() *Processor {
	p := NewProcessor()
	p.Spinner = utils.NewSpinner("", time.Millisecond, false)
	return p
}

func readResult(t *testing.T, path string) Result {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read %s: %v", path, err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatalf("could not decode %s: %v", path, err)
	}
	return res
}

func TestExec_Directory(t *testing.T) {
	assert := assert.New(t)

	src, dst := t.TempDir(), filepath.Join(t.TempDir(), "crops")
	writePNG(t, filepath.Join(src, "portrait.png"), referencePortrait())
	writePNG(t, filepath.Join(src, "empty.png"), newPortrait(300, 300))
	assert.NoError(os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip me"), 0644))

	op := &Ops{Src: src, Dst: dst, PipeName: "-", Workers: 2, JSON: true}
	assert.NoError(quietProcessor().Execute(op))

	assert.FileExists(filepath.Join(dst, "portrait.png"))
	assert.FileExists(filepath.Join(dst, "empty.png"))
	assert.NoFileExists(filepath.Join(dst, "notes.txt"))

	assert.Equal(SourceHeuristic, readResult(t, filepath.Join(dst, "portrait.json")).Source)
	assert.Equal(SourceFallback, readResult(t, filepath.Join(dst, "empty.json")).Source)
}

func TestExec_SingleFile(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	in, out := filepath.Join(dir, "in.png"), filepath.Join(dir, "out.jpg")
	writePNG(t, in, referencePortrait())

	op := &Ops{Src: in, Dst: out, PipeName: "-"}
	assert.NoError(quietProcessor().Execute(op))
	assert.FileExists(out)
	assert.NoFileExists(filepath.Join(dir, "out.json"))
}

func TestExec_Errors(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writePNG(t, in, referencePortrait())

	err := quietProcessor().Execute(&Ops{Src: in, Dst: filepath.Join(dir, "out.tiff"), PipeName: "-"})
	assert.Error(err)

	err = quietProcessor().Execute(&Ops{Src: filepath.Join(dir, "missing.png"), Dst: filepath.Join(dir, "out.png"), PipeName: "-"})
	assert.Error(err)

	broken := filepath.Join(dir, "broken.png")
	assert.NoError(os.WriteFile(broken, []byte("not an image"), 0644))
	err = quietProcessor().Execute(&Ops{Src: broken, Dst: filepath.Join(dir, "broken-out.png"), PipeName: "-"})
	assert.Error(err)
	assert.NoFileExists(filepath.Join(dir, "broken-out.png"))
}

func TestExec_OutputPath(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(filepath.Join("out", "a.jpg"), outputPath("out", filepath.Join("in", "a.jpg")))
	assert.Equal(filepath.Join("out", "b.PNG"), outputPath("out", filepath.Join("in", "b.PNG")))
	assert.Equal(filepath.Join("out", "c.png"), outputPath("out", filepath.Join("in", "c.gif")))
	assert.Equal(filepath.Join("out", "d.png"), outputPath("out", filepath.Join("in", "d.webp")))
}

func TestExec_ValidExtension(t *testing.T) {
	assert := assert.New(t)

	assert.True(isValidExtension(".webp", srcExtensions))
	assert.False(isValidExtension(".webp", dstExtensions))
	assert.True(isValidExtension(".bmp", dstExtensions))
	assert.False(isValidExtension(".tiff", srcExtensions))
}

func TestExec_InterruptWatcherStops(t *testing.T) {
	done := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		defer close(returned)
		watchInterrupt(done, func() { t.Error("cursor restored without an interrupt") })
	}()
	close(done)

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("interrupt watcher still running after the run finished")
	}
}
