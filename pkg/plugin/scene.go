package plugin

import "github.com/df07/go-plugin-renderer/pkg/core"

// Scene is the view of a finalized scene offered to scene-aware objects
type Scene interface {
	BoundingBox() core.AABB
}

// SceneAware is implemented by objects that need the finalized scene.
// SetScene is called exactly once; later calls return an error.
type SceneAware interface {
	SetScene(scene Scene) error
}
