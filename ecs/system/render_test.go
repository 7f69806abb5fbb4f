package system

import (
	"testing"

	"github.com/milk9111/redroom/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectTrianglesForRoom(t *testing.T) {
	w := ecs.NewWorld()
	NewSceneSystem(RoomScene, nil).Spawn().Update(w)

	r := NewRenderSystem()
	tris := r.CollectTriangles(w, 1280, 720, nil)
	require.NotEmpty(t, tris)

	for i := 1; i < len(tris); i++ {
		prev, cur := tris[i-1], tris[i]
		if prev.Layer == cur.Layer {
			require.GreaterOrEqual(t, prev.Depth, cur.Depth, "triangle %d is out of depth order", i)
		} else {
			require.Less(t, prev.Layer, cur.Layer)
		}
	}

	// the red lights tint the white surfaces
	tinted := false
	for _, tri := range tris {
		v := tri.V[0]
		assert.Equal(t, float32(1), v.A)
		if v.R > v.G+0.05 {
			tinted = true
		}
	}
	assert.True(t, tinted)
}

func TestCollectTrianglesWithoutCamera(t *testing.T) {
	w := ecs.NewWorld()
	r := NewRenderSystem()
	assert.Empty(t, r.CollectTriangles(w, 1280, 720, nil))
}

func TestFlatScreenPosition(t *testing.T) {
	x, y := FlatScreenPosition(0, 0, 0, 0, 1, 640, 360)
	assert.Equal(t, 640.0, x)
	assert.Equal(t, 360.0, y)

	x, y = FlatScreenPosition(10, 20, 0, 0, 2, 640, 360)
	assert.Equal(t, 660.0, x)
	assert.Equal(t, 320.0, y, "world up is screen up")
}
