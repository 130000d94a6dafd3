package main

import (
	"fmt"
	"sort"
	"sync"

	"github.com/illuscio-dev/spanroutes-go/routes"
	"github.com/illuscio-dev/spanroutes-go/spanerrors"
)

// Foo is the resource served by the demo API.
type Foo struct {
	Name             string  `json:"name" xml:"name" yaml:"name" bson:"name" validate:"required"`
	ExtraInformation *string `json:"extra_information,omitempty" xml:"extra_information,omitempty" yaml:"extra_information,omitempty" bson:"extra_information,omitempty"`
}

// FooByIDDetail echoes the path parameters of a nested route.
type FooByIDDetail struct {
	ID      int    `json:"id" xml:"id" yaml:"id" bson:"id"`
	ChildID string `json:"child_id" xml:"child_id" yaml:"child_id" bson:"child_id"`
}

// In-memory store of the demo API.
type demoAPI struct {
	lock sync.RWMutex
	foos map[int]Foo
	next int
}

func newDemoAPI() *demoAPI {
	more := "Something more éèêàùß!"
	return &demoAPI{
		foos: map[int]Foo{
			1: {Name: "Foo#1"},
			2: {Name: "Foo#2", ExtraInformation: &more},
			3: {Name: "Foo#3"},
		},
		next: 4,
	}
}

func (api *demoAPI) define(root *routes.Scope) {
	root.Path("foo", func(foo *routes.Scope) {
		foo.GET(api.listFoo)
		foo.POST(newFoo, api.postFoo)
		foo.Path("new", func(fooNew *routes.Scope) {
			fooNew.POSTBlank(api.postBlankFoo)
		})
		foo.Path(":id", func(byID *routes.Scope) {
			byID.Path("child/:childId", func(child *routes.Scope) {
				child.GET(api.getFooChild)
			})
			byID.Path("new", func(byIDNew *routes.Scope) {
				byIDNew.POSTBlank(api.postBlankFooByID)
			})
			byID.POST(newFoo, api.postFooByID)
			byID.DELETE(api.deleteFoo)
		})
	})
	root.Path("bar/:barId/bleh/:blehId", func(bleh *routes.Scope) {
		bleh.GET(api.getBarBleh)
	})
}

func newFoo() interface{} {
	return new(Foo)
}

const defaultPageLimit = 50

func (api *demoAPI) listFoo(request *routes.Request) (routes.Result, error) {
	pageRequest, err := request.PageRequest(defaultPageLimit)
	if err != nil {
		return routes.Result{}, err
	}

	api.lock.RLock()
	defer api.lock.RUnlock()

	ids := make([]int, 0, len(api.foos))
	for id := range api.foos {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	start, end := pageRequest.Bounds(len(ids))
	foos := make([]Foo, 0, end-start)
	for _, id := range ids[start:end] {
		foos = append(foos, api.foos[id])
	}

	page := routes.NewPage(pageRequest, len(ids), request.URL)
	return routes.Ok(foos).WithPage(page), nil
}

func (api *demoAPI) store(id int, foo Foo) {
	api.lock.Lock()
	defer api.lock.Unlock()

	if id == 0 {
		id = api.next
	}
	if id >= api.next {
		api.next = id + 1
	}
	api.foos[id] = foo
}

func (api *demoAPI) postFoo(request *routes.Request) (routes.Result, error) {
	foo := request.Body.(*Foo)
	api.store(0, *foo)
	return routes.Created([]string{"Created `foo` with name " + foo.Name}), nil
}

func (api *demoAPI) postFooByID(request *routes.Request) (routes.Result, error) {
	id, err := request.IntParam("id")
	if err != nil {
		return routes.Result{}, err
	}

	foo := request.Body.(*Foo)
	api.store(id, *foo)
	return routes.Created([]string{
		fmt.Sprintf("Created `foo` with name %v and ID %v", foo.Name, id),
	}), nil
}

func (api *demoAPI) postBlankFoo(request *routes.Request) (routes.Result, error) {
	extra := "Created from blank POST request"
	return routes.Created(Foo{Name: "Created `foo`", ExtraInformation: &extra}), nil
}

func (api *demoAPI) postBlankFooByID(request *routes.Request) (routes.Result, error) {
	id, err := request.IntParam("id")
	if err != nil {
		return routes.Result{}, err
	}

	extra := "Created from blank POST request"
	return routes.Created(Foo{
		Name:             fmt.Sprintf("Created `foo` with ID %v", id),
		ExtraInformation: &extra,
	}), nil
}

func (api *demoAPI) deleteFoo(request *routes.Request) (routes.Result, error) {
	id, err := request.IntParam("id")
	if err != nil {
		return routes.Result{}, err
	}

	api.lock.Lock()
	defer api.lock.Unlock()

	if _, ok := api.foos[id]; !ok {
		return routes.Result{}, spanerrors.PathParamError.New(
			"no foo with this id", map[string]interface{}{"id": id}, nil,
		)
	}
	delete(api.foos, id)
	return routes.Result{}, nil
}

func (api *demoAPI) getFooChild(request *routes.Request) (routes.Result, error) {
	id, err := request.IntParam("id")
	if err != nil {
		return routes.Result{}, err
	}
	childID, err := request.Param("childId")
	if err != nil {
		return routes.Result{}, err
	}
	return routes.Ok(FooByIDDetail{ID: id, ChildID: childID}), nil
}

func (api *demoAPI) getBarBleh(request *routes.Request) (routes.Result, error) {
	barID, err := request.Param("barId")
	if err != nil {
		return routes.Result{}, err
	}
	blehID, err := request.Param("blehId")
	if err != nil {
		return routes.Result{}, err
	}
	return routes.Ok([]string{
		fmt.Sprintf("It worked, with `bar` ID %q and `bleh` ID %q", barID, blehID),
	}), nil
}
