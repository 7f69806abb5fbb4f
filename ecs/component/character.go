package component

// CharacterController drives a dynamic body from Input.
type CharacterController struct {
	// Acceleration in m/s² applied along the input direction.
	Acceleration float64
	// Damping multiplies horizontal velocity once per frame.
	Damping float64
	// JumpImpulse is the vertical speed set when jumping from the ground.
	JumpImpulse float64
	// MaxSlopeAngle in radians; steeper ground does not count as walkable.
	MaxSlopeAngle float64
}

var CharacterControllerComponent = NewComponent[CharacterController]()
