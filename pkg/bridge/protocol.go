// Package bridge implements a history backend on top of a WebSocket
// connection to a thin browser client.
//
// The browser owns the real history stack. The client reports its address
// once on connect and again on every popstate; the server tells it to push,
// replace or traverse entries and sends rendered view fragments.
//
// # Messages
//
// All frames are JSON text messages:
//
//	client → server
//	  {"type":"init","address":"/config"}     first frame, current address
//	  {"type":"pop","address":"/"}            back/forward or typed address
//	  {"type":"navigate","path":"/config"}    link click inside the app
//
//	server → client
//	  {"type":"push","address":"/config"}     history.pushState
//	  {"type":"replace","address":"/"}        history.replaceState
//	  {"type":"back"} / {"type":"forward"}    history.back() / forward()
//	  {"type":"render","view":"config","title":"...","html":"...","found":true}
//	  {"type":"error","error":"..."}
package bridge

// MessageType identifies a bridge frame.
type MessageType string

const (
	TypeInit     MessageType = "init"
	TypePop      MessageType = "pop"
	TypeNavigate MessageType = "navigate"

	TypePush    MessageType = "push"
	TypeReplace MessageType = "replace"
	TypeBack    MessageType = "back"
	TypeForward MessageType = "forward"
	TypeRender  MessageType = "render"
	TypeError   MessageType = "error"
)

// Message is a single bridge frame.
type Message struct {
	Type MessageType `json:"type"`

	// Address is an address-bar string (init, pop, push, replace).
	Address string `json:"address,omitempty"`

	// Path is an application path (navigate, render).
	Path string `json:"path,omitempty"`

	// Replace asks for a replace-navigation (navigate).
	Replace bool `json:"replace,omitempty"`

	// View, Title, HTML and Found describe a rendered view (render).
	View  string `json:"view,omitempty"`
	Title string `json:"title,omitempty"`
	HTML  string `json:"html,omitempty"`
	Found bool   `json:"found"`

	// Error is a human-readable failure (error).
	Error string `json:"error,omitempty"`
}
