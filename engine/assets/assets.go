package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/ferrite/engine/containers"
	"github.com/spaghettifunk/ferrite/engine/core"
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeShader
	AssetTypeImage
)

type AssetInfo struct {
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

// queued change events per pump; excess notifications in one frame are
// dropped with a warning.
const changeQueueSize = 256

/** @brief The asset manager indexes the asset directory, loads shaders and
 * images from it, and watches it for changes. Filesystem notifications
 * arrive on a watcher goroutine and are queued; Pump drains the queue on the
 * caller's thread and fires an EVENT_CODE_ASSET_CHANGED per touched asset. */
type AssetManager struct {
	baseDir string
	assets  map[string]AssetInfo

	mutex   sync.Mutex
	changes *containers.RingQueue[fsnotify.Event]

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewAssetManager(baseDir string, watch bool) (*AssetManager, error) {
	am := &AssetManager{
		baseDir: baseDir,
		assets:  make(map[string]AssetInfo),
		changes: containers.NewRingQueue[fsnotify.Event](changeQueueSize),
		done:    make(chan struct{}),
	}

	if err := am.indexRecursive(baseDir); err != nil {
		return nil, err
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			core.LogError(err.Error())
			return nil, err
		}
		am.watcher = watcher
		if err := am.watchRecursive(baseDir); err != nil {
			watcher.Close()
			return nil, err
		}
		go am.run()
	}

	return am, nil
}

/**
 * @brief Drains queued filesystem notifications, firing one
 * EVENT_CODE_ASSET_CHANGED per indexed asset that was touched. Must run on
 * the thread that owns the event listeners.
 */
func (am *AssetManager) Pump() {
	for {
		am.mutex.Lock()
		event, err := am.changes.Dequeue()
		am.mutex.Unlock()
		if err != nil {
			return
		}

		assetType := determineAssetType(event.Name)
		if assetType == AssetTypeNone {
			continue
		}

		if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
			am.index(event.Name, assetType)
			core.EventFire(core.EVENT_CODE_ASSET_CHANGED, am, core.EventContext{Str: event.Name})
		}
		if event.Op&fsnotify.Remove != 0 {
			delete(am.assets, event.Name)
		}
	}
}

/** @brief Reads a compiled SPIR-V shader from the asset directory. */
func (am *AssetManager) LoadShader(name string) ([]byte, error) {
	path := filepath.Join(am.baseDir, "shaders", name)
	if _, indexed := am.assets[path]; !indexed {
		err := fmt.Errorf("shader asset '%s' is not indexed", path)
		core.LogError(err.Error())
		return nil, err
	}
	code, err := LoadSPIRV(path)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	am.touch(path)
	return code, nil
}

/** @brief Reads a texture image from the asset directory as tightly packed
 * RGBA pixels. */
func (am *AssetManager) LoadImage(name string) (*ImageData, error) {
	path := filepath.Join(am.baseDir, "textures", name)
	if _, indexed := am.assets[path]; !indexed {
		err := fmt.Errorf("image asset '%s' is not indexed", path)
		core.LogError(err.Error())
		return nil, err
	}
	img, err := LoadImageRGBA(path)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	am.touch(path)
	return img, nil
}

func (am *AssetManager) Shutdown() error {
	if am.watcher == nil {
		return nil
	}
	close(am.done)
	return am.watcher.Close()
}

// run forwards watcher notifications into the change queue. Runs on its own
// goroutine until Shutdown.
func (am *AssetManager) run() {
	for {
		select {
		case event, ok := <-am.watcher.Events:
			if !ok {
				return
			}
			// Directories created under a watched one must be watched too.
			if s, err := os.Stat(event.Name); err == nil && s.IsDir() {
				if event.Op&fsnotify.Create != 0 {
					am.watchRecursive(event.Name)
				}
				continue
			}
			am.mutex.Lock()
			if err := am.changes.Enqueue(event); err != nil {
				core.LogWarn("asset change queue full, dropping notification for '%s'", event.Name)
			}
			am.mutex.Unlock()

		case err, ok := <-am.watcher.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) indexRecursive(dir string) error {
	return filepath.Walk(dir, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		if assetType := determineAssetType(walkPath); assetType != AssetTypeNone {
			am.index(walkPath, assetType)
		}
		return nil
	})
}

func (am *AssetManager) watchRecursive(dir string) error {
	return filepath.Walk(dir, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.watcher.Add(walkPath)
		}
		return nil
	})
}

func (am *AssetManager) index(path string, assetType AssetType) {
	am.assets[path] = AssetInfo{
		Path:       path,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

func (am *AssetManager) touch(path string) {
	if info, ok := am.assets[path]; ok {
		info.LastLoaded = time.Now()
		am.assets[path] = info
	}
}

func determineAssetType(path string) AssetType {
	switch filepath.Ext(path) {
	case ".spv":
		return AssetTypeShader
	case ".png", ".jpg", ".jpeg":
		return AssetTypeImage
	default:
		return AssetTypeNone
	}
}
