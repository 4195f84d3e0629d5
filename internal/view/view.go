// Package view renders the health badge. A View fetches the health status
// once when mounted and renders one of three states: a loading spinner, a
// badge with environment and version, or an error banner.
package view

import (
	"context"
	"embed"
	"html/template"
	"io"
	"sync"

	"healthbadge/internal/client"
	"healthbadge/internal/models"
)

//go:embed templates
var templateFS embed.FS

// ParseTemplates parses the "health-check" fragment and the "page" layout.
func ParseTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

var defaultTemplates = sync.OnceValues(ParseTemplates)

// Phase is the lifecycle position of a View.
type Phase int

const (
	// Loading is the initial phase, held until the fetch settles.
	Loading Phase = iota
	// Loaded means the fetch returned a status.
	Loaded
	// Failed means the fetch returned an error; State.Message holds its text.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of what the View shows. Status is set only when Loaded
// and Message only when Failed.
type State struct {
	Phase   Phase
	Status  *models.HealthStatus
	Message string
}

// Badge classes
const (
	BadgeProduction = "bg-success"
	BadgeDefault    = "bg-primary"
)

// BadgeClass returns the badge styling for an environment name.
func BadgeClass(environment string) string {
	if environment == models.EnvironmentProd {
		return BadgeProduction
	}
	return BadgeDefault
}

// View owns the state of one mounted health badge. The state moves from
// Loading to Loaded or Failed at most once; it never returns to Loading.
type View struct {
	fetcher client.Fetcher
	tmpl    *template.Template

	mu        sync.Mutex
	state     State
	mounted   bool
	unmounted bool
	cancel    context.CancelFunc

	done     chan struct{}
	doneOnce sync.Once
}

// New returns an unmounted View in the Loading state. A nil tmpl uses the
// embedded templates.
func New(fetcher client.Fetcher, tmpl *template.Template) *View {
	return &View{
		fetcher: fetcher,
		tmpl:    tmpl,
		done:    make(chan struct{}),
	}
}

// Mount starts the one fetch this View will ever make. Calls after the first,
// or after Unmount, do nothing.
func (v *View) Mount(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mounted || v.unmounted {
		return
	}
	v.mounted = true

	ctx, v.cancel = context.WithCancel(ctx)
	go v.load(ctx)
}

func (v *View) load(ctx context.Context) {
	status, err := v.fetcher.FetchHealth(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		return
	}
	if err != nil {
		v.state = State{Phase: Failed, Message: err.Error()}
	} else {
		v.state = State{Phase: Loaded, Status: status}
	}
	v.settle()
}

// Unmount cancels an in-flight fetch. A result arriving afterwards is
// discarded and the View keeps the state it had.
func (v *View) Unmount() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unmounted {
		return
	}
	v.unmounted = true
	if v.cancel != nil {
		v.cancel()
	}
	v.settle()
}

// settle closes done; v.mu must be held.
func (v *View) settle() {
	v.doneOnce.Do(func() { close(v.done) })
}

// State returns the current snapshot.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Done is closed once the state has settled or the View was unmounted.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// Wait blocks until Done or ctx ends and returns the state at that point,
// which is still Loading if ctx ended first.
func (v *View) Wait(ctx context.Context) State {
	select {
	case <-v.done:
	case <-ctx.Done():
	}
	return v.State()
}

type templateData struct {
	State
	Loading    bool
	Failed     bool
	BadgeClass string
}

func (v *View) data() templateData {
	s := v.State()
	d := templateData{
		State:   s,
		Loading: s.Phase == Loading,
		Failed:  s.Phase == Failed,
	}
	if s.Phase == Loaded && s.Status != nil {
		d.BadgeClass = BadgeClass(s.Status.Environment)
	} else if s.Phase == Loaded {
		d.State.Status = &models.HealthStatus{}
		d.BadgeClass = BadgeDefault
	}
	return d
}

// Render writes the badge fragment for the current state.
func (v *View) Render(w io.Writer) error {
	return v.execute(w, "health-check")
}

// RenderPage writes a full HTML document around the badge fragment.
func (v *View) RenderPage(w io.Writer) error {
	return v.execute(w, "page")
}

func (v *View) execute(w io.Writer, name string) error {
	tmpl := v.tmpl
	if tmpl == nil {
		var err error
		if tmpl, err = defaultTemplates(); err != nil {
			return err
		}
	}
	return tmpl.ExecuteTemplate(w, name, v.data())
}
