package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/** @brief A quaternion, used to represent rotational orientation. */
type Quaternion Vec4

/**
 * @brief a 4x4 matrix, typically used to represent object transformations.
 * Elements are stored column-major, matching the layout OpenGL expects, so
 * Data[12], Data[13] and Data[14] hold the translation.
 */
type Mat4 struct {
	Data [16]float32
}

/**
 * @brief Position, rotation and scale of a scene node relative to its parent.
 * The local matrix is cached and rebuilt lazily: use the setters so changes
 * mark it stale. The scene graph owns the hierarchy, a Transform has no parent.
 */
type Transform struct {
	Position Vec3
	Rotation Quaternion
	Scale    Vec3
	// IsDirty is set when Local no longer matches the components.
	IsDirty bool
	Local   Mat4
}
