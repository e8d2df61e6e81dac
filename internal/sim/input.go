package sim

import "time"

// directionVectors maps the numpad-style PlayerInput.Direction to a unit
// vector (before speed scaling); idle and unknown values yield the zero
// vector. Diagonals are pre-normalized so movement speed is constant in
// all eight directions, per spec.md §4.6 step 2.
var directionVectors = func() map[uint8][2]float64 {
	raw := map[uint8][2]float64{
		8: {0, -1}, 2: {0, 1}, 4: {-1, 0}, 6: {1, 0},
		7: {-1, -1}, 9: {1, -1}, 1: {-1, 1}, 3: {1, 1},
		5: {0, 0},
	}
	const invSqrt2 = 0.70710678118654752440
	for dir, v := range raw {
		switch dir {
		case 7, 9, 1, 3:
			raw[dir] = [2]float64{v[0] * invSqrt2, v[1] * invSqrt2}
		}
	}
	return raw
}()

// runInputSystem converts each player-controlled entity's last received
// direction into a velocity, normalized so diagonal movement is no
// faster than cardinal movement.
func (k *Kernel) runInputSystem(dt time.Duration) {
	for _, id := range k.inputDriven.Entities() {
		input, ok := k.World.Input(id)
		if !ok {
			continue
		}
		vel, ok := k.World.Velocity(id)
		if !ok {
			continue
		}
		dir, known := directionVectors[input.Direction]
		if !known {
			dir = [2]float64{0, 0}
		}
		vel.VX = dir[0] * PlayerSpeed
		vel.VY = dir[1] * PlayerSpeed
	}
}
