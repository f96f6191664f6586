// Package view renders pages through a server-driven SPA bridge. Each
// response is a component name plus a props object; XHR navigations receive
// the page object as bare JSON, full loads receive an HTML shell embedding
// the same object.
package view

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/warungpos/warungpos/internal/shared"
	"github.com/warungpos/warungpos/web"
)

const headerInertia = "X-Inertia"

// Page is the payload handed to the client-side app.
type Page struct {
	Component string         `json:"component"`
	Props     map[string]any `json:"props"`
	URL       string         `json:"url"`
	Version   string         `json:"version"`
}

// Engine renders pages into the embedded HTML shell.
type Engine struct {
	shell   *template.Template
	version string
}

type shellData struct {
	Title string
	Page  string
}

// NewEngine parses the embedded shell template.
func NewEngine(version string) (*Engine, error) {
	tpl, err := template.ParseFS(web.Templates, "templates/app.html")
	if err != nil {
		return nil, fmt.Errorf("view: parse shell: %w", err)
	}
	return &Engine{shell: tpl, version: version}, nil
}

// Render writes a page response for the given component and props.
func (e *Engine) Render(w http.ResponseWriter, r *http.Request, status int, component string, props map[string]any) error {
	if e == nil {
		return fmt.Errorf("view: engine not initialised")
	}
	if props == nil {
		props = map[string]any{}
	}
	// shared prop: the session's CSRF token, echoed back by the client
	// on every mutating request
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		if _, ok := props["csrf_token"]; !ok {
			props["csrf_token"] = sess.Get(shared.CSRFSessionKey)
		}
	}
	page := Page{
		Component: component,
		Props:     props,
		URL:       r.URL.RequestURI(),
		Version:   e.version,
	}

	if IsBridgeRequest(r) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(headerInertia, "true")
		w.Header().Set("Vary", headerInertia)
		w.WriteHeader(status)
		return json.NewEncoder(w).Encode(page)
	}

	encoded, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("view: encode page: %w", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	return e.shell.Execute(w, shellData{Title: "WarungPOS", Page: string(encoded)})
}

// Redirect issues a redirect to location. 303 forces the follow-up request
// to be a GET even after PUT/DELETE submissions.
func Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// IsBridgeRequest reports whether the request came from the client-side app.
func IsBridgeRequest(r *http.Request) bool {
	return r.Header.Get(headerInertia) == "true"
}
