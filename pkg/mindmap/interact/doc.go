// Package interact attaches pan/zoom, tooltip and link navigation behavior
// to a rendered scene.
//
// # Overview
//
// A [Controller] owns one [SceneState] for one [scene.Handle]. The host event
// loop feeds it [Event] values through [Controller.Dispatch]; the controller
// hit-tests the pointer against the handle's regions and runs every handler
// registered for the event kind. Handlers receive the state, the event and
// the region under the pointer explicitly; nothing is captured from outside.
//
// The built-in behaviors are ordinary handlers registered by [Attach]:
//
//   - pan/zoom: dragging translates, wheel and pinch zoom about the pointer,
//     scale stays within [Options.MinScale, Options.MaxScale]
//   - tooltip: a single panel that fades in over a hovered node's summary and
//     fades out when the pointer leaves; see [Phase]
//   - navigation: clicking a node with a link opens it through a [Navigator]
//
// [Controller.On] registers additional handlers and returns a dispose
// function. [Controller.Detach] disposes all of them; later dispatches are
// ignored.
//
// # Time
//
// Fades are driven by an injectable clock ([WithClock]) and advanced by
// [Tick] events, so tests step through transitions deterministically.
//
// Dispatch never fails: interaction events are total over the current scene.
// A Controller is confined to the goroutine running the host event loop.
package interact
