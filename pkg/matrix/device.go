package matrix

// DeviceMatrix is the reduced nodal system devices stamp into.
// Indices are 0-based reduced indices; ground never has one.
type DeviceMatrix[S any] interface {
	AddElement(i, j int, value S)
	AddRHS(i int, value S)
	// ReplaceRow turns row i into the constraint x_i = value.
	ReplaceRow(i int, value S)
}
