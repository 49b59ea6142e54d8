package ecs

// Layer is the routing tag selecting which host event drives a subset of
// entities.
type Layer int

const (
	LayerWorld3D Layer = iota
	LayerHUD
	LayerGUI
)

// SceneManager owns the active dimension id and the active-camera lookup,
// the two pieces of frame-global state the systems need that don't belong
// to any single entity. Modeled after fizzle's scene.BasicSceneManager,
// minus the entity/system bookkeeping ecs.World already owns.
type SceneManager struct {
	activeDimension   *int
	dimensionSet      bool
	activeCamera      EntityId
	hasActiveCamera   bool
	cameraSeenLastSet map[EntityId]EntityId // entity -> active camera id observed at creation, for VIEW lifetime
	sessionEnded      bool

	viewportW, viewportH int32
	viewportSet          bool
}

func newSceneManager() *SceneManager {
	return &SceneManager{
		cameraSeenLastSet: make(map[EntityId]EntityId),
	}
}

// SetActiveDimension writes the active dimension id. A nil dimension means
// "all dimensions" per the Dimension component's absence semantics.
func (sm *SceneManager) SetActiveDimension(id int) {
	sm.activeDimension = &id
	sm.dimensionSet = true
}

// ClearActiveDimension resets to "all dimensions".
func (sm *SceneManager) ClearActiveDimension() {
	sm.activeDimension = nil
	sm.dimensionSet = false
}

// ActiveDimension returns the current dimension id, or (0, false) if none
// is set (all dimensions visible).
func (sm *SceneManager) ActiveDimension() (int, bool) {
	if !sm.dimensionSet {
		return 0, false
	}
	return *sm.activeDimension, true
}

// SetActiveCamera records which entity is the current active camera. Called
// by the camera system whenever it finds the Camera.Active flag set.
func (sm *SceneManager) SetActiveCamera(id EntityId) {
	sm.activeCamera = id
	sm.hasActiveCamera = true
}

// ActiveCamera returns the current active camera entity, if any.
func (sm *SceneManager) ActiveCamera() (EntityId, bool) {
	return sm.activeCamera, sm.hasActiveCamera
}

// ClearActiveCamera is used when no Camera component currently has
// Active == true.
func (sm *SceneManager) ClearActiveCamera() {
	sm.hasActiveCamera = false
}

// NoteEntityCreatedUnderCamera records, for a VIEW-lifetime entity, which
// camera was active at creation time so the lifetime reaper can detect a
// later camera change.
func (sm *SceneManager) NoteEntityCreatedUnderCamera(entity EntityId) {
	if sm.hasActiveCamera {
		sm.cameraSeenLastSet[entity] = sm.activeCamera
	}
}

// CameraChangedSince reports whether the active camera differs from the one
// recorded for entity at creation time.
func (sm *SceneManager) CameraChangedSince(entity EntityId) bool {
	seen, ok := sm.cameraSeenLastSet[entity]
	if !ok {
		return false
	}
	cur, has := sm.ActiveCamera()
	return !has || cur != seen
}

func (sm *SceneManager) forgetEntity(entity EntityId) {
	delete(sm.cameraSeenLastSet, entity)
	if sm.hasActiveCamera && sm.activeCamera == entity {
		sm.hasActiveCamera = false
	}
}

// SetViewportSize records the current render-target size in pixels, read
// by the world-space UI projection system to convert clip-space to
// screen-space coordinates.
func (sm *SceneManager) SetViewportSize(w, h int32) {
	sm.viewportW, sm.viewportH = w, h
	sm.viewportSet = true
}

// ViewportSize returns the last size set via SetViewportSize.
func (sm *SceneManager) ViewportSize() (w, h int32, ok bool) {
	return sm.viewportW, sm.viewportH, sm.viewportSet
}

// TriggerSessionEnd marks the session-end signal observed by SESSION-kind
// Lifetime components, driven by the host's on_session_end event.
func (sm *SceneManager) TriggerSessionEnd() {
	sm.sessionEnded = true
}

// SessionEnded reports whether on_session_end has fired.
func (sm *SceneManager) SessionEnded() bool {
	return sm.sessionEnded
}
