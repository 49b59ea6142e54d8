package components

// Visibility splits the visible/invisible decision into a client-owned flag
// and a system-owned flag: only the frustum-culling system should call
// SetCulled, only client code should call SetVisible.
type Visibility struct {
	visible bool
	culled  bool
}

// NewVisibility returns a Visibility defaulting to visible, uncalled.
func NewVisibility() Visibility {
	return Visibility{visible: true}
}

func (v *Visibility) SetVisible(visible bool) { v.visible = visible }
func (v *Visibility) Visible() bool           { return v.visible }

// SetCulled is called exclusively by the frustum-culling system.
func (v *Visibility) SetCulled(culled bool) { v.culled = culled }
func (v *Visibility) Culled() bool          { return v.culled }

// Effective reports whether the entity should actually be drawn this frame.
func (v *Visibility) Effective() bool {
	return v.visible && !v.culled
}
