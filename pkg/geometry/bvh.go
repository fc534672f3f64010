package geometry

import (
	"math"

	"github.com/df07/go-plugin-renderer/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Shapes of a leaf node (nil for internal nodes)
}

// BVH answers closest-hit queries against a fixed set of shapes
type BVH struct {
	Root *BVHNode
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 4

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}
	// Copy so that partitioning never reorders the caller's slice
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)
	return &BVH{Root: buildBVH(shapesCopy)}
}

// buildBVH recursively builds the hierarchy using median splits along the
// longest axis of the node bounds
func buildBVH(shapes []Shape) *BVHNode {
	boundingBox := core.EmptyAABB()
	for _, shape := range shapes {
		boundingBox = boundingBox.Union(shape.BoundingBox())
	}

	leaf := &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	if len(shapes) <= leafThreshold {
		return leaf
	}

	axis := boundingBox.LongestAxis()
	minVal, maxVal := boundingBox.Min.Component(axis), boundingBox.Max.Component(axis)
	if maxVal <= minVal {
		return leaf
	}
	splitPos := (minVal + maxVal) * 0.5

	var leftShapes, rightShapes []Shape
	for _, shape := range shapes {
		if shape.BoundingBox().Center().Component(axis) < splitPos {
			leftShapes = append(leftShapes, shape)
		} else {
			rightShapes = append(rightShapes, shape)
		}
	}
	// Ensure we don't create empty partitions
	if len(leftShapes) == 0 || len(rightShapes) == 0 {
		return leaf
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(leftShapes),
		Right:       buildBVH(rightShapes),
	}
}

// Intersect returns the closest hit along ray together with the shape that
// was hit. Misses and inactive lanes return the invalid interaction.
func (bvh *BVH) Intersect(ray core.Ray, active bool) (core.SurfaceInteraction, Shape) {
	if !active || bvh.Root == nil {
		return core.InvalidInteraction(), nil
	}
	si, shape := core.InvalidInteraction(), Shape(nil)
	bvh.hitNode(bvh.Root, ray, math.Inf(1), &si, &shape)
	return si, shape
}

// hitNode recursively tests ray intersection with BVH nodes and narrows tMax
// as closer hits are found
func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMax float64, si *core.SurfaceInteraction, hit *Shape) float64 {
	if !node.BoundingBox.Hit(ray, 0, tMax) {
		return tMax
	}

	if node.Shapes != nil {
		for _, shape := range node.Shapes {
			if candidate, ok := shape.Hit(ray, 0, tMax); ok {
				*si, *hit = candidate, shape
				tMax = candidate.T
			}
		}
		return tMax
	}

	if node.Left != nil {
		tMax = bvh.hitNode(node.Left, ray, tMax, si, hit)
	}
	if node.Right != nil {
		tMax = bvh.hitNode(node.Right, ray, tMax, si, hit)
	}
	return tMax
}

// BoundingBox returns the bounds of every shape in the hierarchy
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.EmptyAABB()
	}
	return bvh.Root.BoundingBox
}

// Stats summarizes the structure of the hierarchy
type Stats struct {
	TotalNodes  int
	LeafNodes   int
	MaxDepth    int
	TotalShapes int
}

// Stats walks the hierarchy and counts its nodes
func (bvh *BVH) Stats() Stats {
	var stats Stats
	if bvh.Root != nil {
		collectStats(bvh.Root, 0, &stats)
	}
	return stats
}

func collectStats(node *BVHNode, depth int, stats *Stats) {
	stats.TotalNodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)
	if node.Shapes != nil {
		stats.LeafNodes++
		stats.TotalShapes += len(node.Shapes)
		return
	}
	if node.Left != nil {
		collectStats(node.Left, depth+1, stats)
	}
	if node.Right != nil {
		collectStats(node.Right, depth+1, stats)
	}
}
