package interact

import (
	"fmt"
	"os/exec"
	"runtime"
	"sync"

	apperr "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/mindmap/scene"
)

// Navigator opens a URL in a new top-level browsing context.
type Navigator interface {
	Open(url string) error
}

// NavigatorFunc adapts a function to [Navigator].
type NavigatorFunc func(url string) error

// Open implements [Navigator].
func (f NavigatorFunc) Open(url string) error { return f(url) }

func (c *Controller) registerNavigation() {
	c.On(Click, func(st *SceneState, _ Event, hit *scene.Region) {
		if st.suppressClick {
			st.suppressClick = false
			return
		}
		if hit == nil || !hit.HasLink() || c.nav == nil {
			return
		}
		if err := c.nav.Open(hit.Link); err != nil {
			c.logger.Warn("could not open link", "url", hit.Link, "node", hit.Path.String(), "error", err)
		}
	})
}

// BrowserNavigator opens links in the operating system's default browser.
// Only http and https URLs are accepted.
type BrowserNavigator struct {
	// Command builds the process to start; nil uses exec.Command.
	Command func(name string, args ...string) *exec.Cmd
}

// Open implements [Navigator].
func (b BrowserNavigator) Open(rawURL string) error {
	if err := apperr.ValidateURL(rawURL); err != nil {
		return err
	}
	command := b.Command
	if command == nil {
		command = exec.Command
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = command("open", rawURL)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = command("xdg-open", rawURL)
	case "windows":
		cmd = command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		return apperr.New(apperr.ErrCodeUnsupported, "unsupported platform: %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", rawURL, err)
	}
	return cmd.Process.Release()
}

// RecordingNavigator remembers opened URLs instead of opening them.
type RecordingNavigator struct {
	mu     sync.Mutex
	opened []string
	Err    error // returned from every Open when set
}

// Open implements [Navigator].
func (r *RecordingNavigator) Open(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, url)
	return r.Err
}

// Opened returns the URLs passed to Open, oldest first.
func (r *RecordingNavigator) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.opened...)
}
