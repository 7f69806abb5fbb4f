package component

// RenderLayer is used to sort draw order deterministically. Lower layers are
// drawn first; depth sorting happens inside a layer.
type RenderLayer struct {
	Index int
}

var RenderLayerComponent = NewComponent[RenderLayer]()
