package component

// Player tunes the flat variant's linear movement.
type Player struct {
	MoveSpeed float64
}

var PlayerComponent = NewComponent[Player]()
