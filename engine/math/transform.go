package math

// TransformCreate returns an identity transform.
func TransformCreate() *Transform {
	return &Transform{
		Rotation: NewQuatIdentity(),
		Scale:    NewVec3One(),
		Local:    NewMat4Identity(),
	}
}

func TransformFromPosition(position Vec3) *Transform {
	t := TransformCreate()
	t.SetPosition(position)
	return t
}

// SetPosition marks the transform dirty only when the value actually changes.
func (t *Transform) SetPosition(position Vec3) {
	if t.Position != position {
		t.Position = position
		t.IsDirty = true
	}
}

func (t *Transform) SetRotation(rotation Quaternion) {
	if t.Rotation != rotation {
		t.Rotation = rotation
		t.IsDirty = true
	}
}

func (t *Transform) SetScale(scale Vec3) {
	if t.Scale != scale {
		t.Scale = scale
		t.IsDirty = true
	}
}

// SetPositionRotationScale replaces all three components at once.
func (t *Transform) SetPositionRotationScale(position Vec3, rotation Quaternion, scale Vec3) {
	t.SetPosition(position)
	t.SetRotation(rotation)
	t.SetScale(scale)
}

// GetLocal returns translation * rotation * scale, recomputed only when dirty.
// A nil transform is the identity.
func (t *Transform) GetLocal() Mat4 {
	if t == nil {
		return NewMat4Identity()
	}
	if t.IsDirty {
		t.Local = NewMat4Translation(t.Position).
			Mul(t.Rotation.ToMat4()).
			Mul(NewMat4Scale(t.Scale))
		t.IsDirty = false
	}
	return t.Local
}
