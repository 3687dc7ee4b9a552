package assets

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/ferrite/engine/core"
)

func writeTestShader(t *testing.T, dir, name string, words []uint32) string {
	t.Helper()
	var buf bytes.Buffer
	for _, w := range words {
		if err := binary.Write(&buf, binary.LittleEndian, w); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestImage(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func testAssetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{"shaders", "textures"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadSPIRVValidatesModule(t *testing.T) {
	dir := t.TempDir()

	good := writeTestShader(t, dir, "good.spv", []uint32{spirvMagic, 0x00010000, 0, 1, 0})
	if _, err := LoadSPIRV(good); err != nil {
		t.Errorf("valid module rejected: %v", err)
	}

	badMagic := writeTestShader(t, dir, "bad.spv", []uint32{0xDEADBEEF, 0})
	if _, err := LoadSPIRV(badMagic); err == nil {
		t.Error("module with wrong magic accepted")
	}

	ragged := filepath.Join(dir, "ragged.spv")
	if err := os.WriteFile(ragged, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSPIRV(ragged); err == nil {
		t.Error("module with partial word accepted")
	}
}

func TestLoadImageRGBA(t *testing.T) {
	dir := t.TempDir()
	path := writeTestImage(t, dir, "tile.png", 4, 2)

	img, err := LoadImageRGBA(path)
	if err != nil {
		t.Fatalf("LoadImageRGBA failed: %v", err)
	}
	if img.Width != 4 || img.Height != 2 || img.ChannelCount != 4 {
		t.Errorf("image shape = %dx%dx%d, want 4x2x4", img.Width, img.Height, img.ChannelCount)
	}
	if len(img.Pixels) != 4*2*4 {
		t.Errorf("pixel buffer is %d bytes, want %d", len(img.Pixels), 4*2*4)
	}
}

func TestManagerLoadsIndexedAssets(t *testing.T) {
	dir := testAssetDir(t)
	writeTestShader(t, filepath.Join(dir, "shaders"), "basic.vert.spv", []uint32{spirvMagic, 0})
	writeTestImage(t, filepath.Join(dir, "textures"), "albedo.png", 2, 2)

	am, err := NewAssetManager(dir, false)
	if err != nil {
		t.Fatalf("NewAssetManager failed: %v", err)
	}
	defer am.Shutdown()

	if _, err := am.LoadShader("basic.vert.spv"); err != nil {
		t.Errorf("LoadShader failed: %v", err)
	}
	if _, err := am.LoadImage("albedo.png"); err != nil {
		t.Errorf("LoadImage failed: %v", err)
	}
	if _, err := am.LoadShader("absent.spv"); err == nil {
		t.Error("unindexed shader loaded")
	}
}

func TestPumpFiresChangeEvents(t *testing.T) {
	dir := testAssetDir(t)
	shader := writeTestShader(t, filepath.Join(dir, "shaders"), "basic.vert.spv", []uint32{spirvMagic, 0})

	am, err := NewAssetManager(dir, false)
	if err != nil {
		t.Fatalf("NewAssetManager failed: %v", err)
	}
	defer am.Shutdown()

	var fired []string
	listener := struct{ name string }{"test"}
	core.EventRegister(core.EVENT_CODE_ASSET_CHANGED, &listener, func(code core.SystemEventCode, sender interface{}, context core.EventContext) bool {
		fired = append(fired, context.Str)
		return true
	})
	defer core.EventUnregister(core.EVENT_CODE_ASSET_CHANGED, &listener)

	am.changes.Enqueue(fsnotify.Event{Name: shader, Op: fsnotify.Write})
	am.changes.Enqueue(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write})
	am.Pump()

	if len(fired) != 1 || fired[0] != shader {
		t.Errorf("change events = %v, want only %q", fired, shader)
	}
	if !am.changes.IsEmpty() {
		t.Error("pump left events queued")
	}
}
