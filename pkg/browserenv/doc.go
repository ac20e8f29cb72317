// Package browserenv abstracts the browser as a capability provider.
//
// Collectors never touch a browser directly; they query a Provider. Three
// providers exist:
//
//   - Static replays a recorded Snapshot (YAML). It is also an EventSource
//     driven by DispatchClick and SetVisible, which makes it the workhorse of
//     tests and offline replays.
//   - Request reads the User-Agent and Client Hints of an incoming HTTP
//     request for server-side identification.
//   - chrome.Page, in the chrome subpackage, evaluates every query inside a
//     live headless Chrome tab.
//
// Record captures any Provider into a Snapshot for later replay.
package browserenv
