package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type CameraTag struct{}

var CameraTagComponent = NewComponent[CameraTag]()

// SceneMember marks entities despawned on restart and hot reload.
type SceneMember struct{}

var SceneMemberComponent = NewComponent[SceneMember]()

// Scripted marks bodies spawned by the sandbox spawner script.
type Scripted struct {
	Order int
}

var ScriptedComponent = NewComponent[Scripted]()

// Name is the prefab or scene name of an entity.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
