package gekko

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

type State int

const STATELESS_STATE State = 0

type systemFn any

type pendingAdd struct {
	eid        EntityId
	components []any
}

type pendingCompAdd struct {
	eid        EntityId
	components []any
}

type pendingCompRemoval struct {
	eid        EntityId
	components []any
}

type Module interface {
	Install(app *App, commands *Commands)
}

type App struct {
	stateful            bool
	stateMachineStarted bool
	stateTransitioning  bool
	initialState        State
	finalState          State
	nextState           State
	state               State

	stages           []Stage
	systems          map[string]map[State]map[statePhase][]systemFn
	systemsStateless map[string][]systemFn

	resources map[reflect.Type]any
	modules   []Module
	ecs       *Ecs

	pendingAdditions    []pendingAdd
	pendingCompAdds     []pendingCompAdd
	pendingCompRemovals []pendingCompRemoval
	pendingRemovals     []EntityId
}

func (app *App) Commands() *Commands {
	return &Commands{app: app}
}

// Flush applies every command queued through Commands since the last flush.
// Run calls this once per stage pass; code driving an App outside of Run
// (tooling, tests, embedding) must call it explicitly for queued entity and
// component mutations to become visible to queries.
func (app *App) Flush() {
	app.flushPending()
}

func (app *App) Run() {
	app.build()

	if app.stateful {
		app.runStateful()
	} else {
		app.runStateless()
	}
}

func (app *App) runStateful() {
	app.executeChangeState(app.initialState)

	for {
		for _, stage := range app.stages {
			app.runStageSystems(stage, execute)
		}
		app.flushPending()

		if app.stateTransitioning {
			app.stateTransitioning = false
			app.executeChangeState(app.nextState)
		}

		if app.state == app.finalState {
			break
		}
	}

	for _, stage := range app.stages {
		app.runStageSystems(stage, exit)
	}
}

func (app *App) runStateless() {
	for {
		for _, stage := range app.stages {
			for _, system := range app.systemsStateless[stage.Name] {
				app.callSystem(system)
			}
		}
		app.flushPending()
	}
}

func (app *App) runStageSystems(stage Stage, phase statePhase) {
	for _, system := range app.systemsStateless[stage.Name] {
		app.callSystem(system)
	}

	systemsInStage, ok := app.systems[stage.Name]
	if !ok {
		return
	}
	systemsInState, ok := systemsInStage[app.state]
	if !ok {
		return
	}
	for _, system := range systemsInState[phase] {
		app.callSystem(system)
	}
}

func (app *App) changeState(newState State) {
	app.nextState = newState
	app.stateTransitioning = true
}

func (app *App) executeChangeState(newState State) {
	if !app.stateMachineStarted {
		app.stateMachineStarted = true

		app.state = newState
		app.callSystems(app.state, enter)
	} else {
		app.callSystems(app.state, exit)
		app.state = newState
		app.callSystems(app.state, enter)
	}
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) callSystems(state State, phase statePhase) {
	for _, stage := range app.stages {
		systemsInStage, ok := app.systems[stage.Name]
		if !ok {
			continue
		}
		systemsInState, ok := systemsInStage[state]
		if !ok {
			continue
		}
		for _, system := range systemsInState[phase] {
			app.callSystem(system)
		}
	}
}

func (app *App) flushPending() {
	for _, add := range app.pendingAdditions {
		app.ecs.insertEntity(add.eid, add.components...)
	}
	app.pendingAdditions = app.pendingAdditions[:0]

	for _, add := range app.pendingCompAdds {
		app.ecs.addComponents(add.eid, add.components...)
	}
	app.pendingCompAdds = app.pendingCompAdds[:0]

	for _, rem := range app.pendingCompRemovals {
		app.ecs.removeComponents(rem.eid, rem.components...)
	}
	app.pendingCompRemovals = app.pendingCompRemovals[:0]

	for _, eid := range app.pendingRemovals {
		app.ecs.removeEntity(eid)
	}
	app.pendingRemovals = app.pendingRemovals[:0]
}

func (app *App) callSystem(system systemFn) {
	start := time.Now()

	app.callSystemInternal(system)

	app.Logger().Debugf(
		"system %s: %dms",
		runtime.FuncForPC(reflect.ValueOf(system).Pointer()).Name(),
		time.Since(start).Milliseconds(),
	)
}

var typeOfCommands = reflect.TypeOf(Commands{})

func (app *App) callSystemInternal(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			resourceVal := reflect.ValueOf(resource)
			typedResourceVal := reflect.NewAt(underlyingType, resourceVal.UnsafePointer())

			args[i] = typedResourceVal
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				runtime.FuncForPC(systemValue.Pointer()).Name(),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}
	systemValue.Call(args)
}
