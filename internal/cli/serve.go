package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/pkg/cache"
	apperr "github.com/matzehuels/mindtree/pkg/errors"
	mtio "github.com/matzehuels/mindtree/pkg/io"
	"github.com/matzehuels/mindtree/pkg/observability"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

const (
	// requestIDHeader carries the per-request ID in responses.
	requestIDHeader = "X-Request-ID"

	// cacheHeader reports whether a render came from the cache.
	cacheHeader = "X-Cache"

	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags   renderFlags
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mind map input page and render API",
		Long: `Serve the mind map input page and render API.

GET  /                   input page: paste a tree, render it in place
POST /api/render         body is a JSON tree (YAML with a yaml content type);
                         ?format=svg|html|png|json|dot selects the output,
                         ?width= and ?height= override the canvas
GET  /healthz            liveness probe

Malformed input is answered with 400, trees or canvases that cannot be
drawn with 422. The cache backend comes from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			return c.runServe(cmd.Context(), addr, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&flags.width, "width", 0, "default canvas width in pixels")
	cmd.Flags().Float64Var(&flags.height, "height", 0, "default canvas height in pixels")
	cmd.Flags().BoolVar(&flags.contour, "contour", false, "pack subtrees by contour instead of disjoint bands")
	cmd.Flags().StringVar(&flags.title, "title", "", "html page title")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	// Requests share the backend with the CLI; keep their entries apart.
	runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "serve:")

	hooks := observability.LogHooks{Logger: c.Logger}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(runner, opts, c.Logger).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Serving mind maps")
	printKeyValue("address", StyleLink.Render("http://"+displayAddr(addr)))
	printKeyValue("cache", c.Config.Cache.Backend)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// =============================================================================
// Server
// =============================================================================

type server struct {
	runner *pipeline.Runner
	base   pipeline.Options
	logger *log.Logger
}

func newServer(runner *pipeline.Runner, base pipeline.Options, logger *log.Logger) *server {
	return &server{runner: runner, base: base, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Post("/api/render", s.handleRender)
	return r
}

// observe assigns a request ID, attaches a request-scoped logger and
// reports the request to the server hooks.
func (s *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := withLogger(r.Context(), s.logger.With("request_id", id))
		hooks := observability.Server()
		hooks.OnRequest(ctx, id, r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set(requestIDHeader, id)
		start := time.Now()
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, id, r.Method, r.URL.Path, status, time.Since(start))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ InvalidJSON string }{mtio.InvalidJSONMessage}
	if err := indexPage.Execute(w, data); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFromContext(ctx)

	opts, err := s.requestOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Logger = logger

	body, err := mtio.ReadInput(http.MaxBytesReader(w, r.Body, mtio.MaxInputSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperr.New(apperr.ErrCodeInvalidInput, "input exceeds %d bytes", mtio.MaxInputSize)
		}
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(ctx, body, inputFormat(r), opts)
	if err != nil {
		logger.Debug("render rejected", "code", apperr.GetCode(err), "error", err)
		writeError(w, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	if result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit {
		w.Header().Set(cacheHeader, "hit")
	} else {
		w.Header().Set(cacheHeader, "miss")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// requestOptions applies the query parameters to the server defaults.
func (s *server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.base
	opts.Source = "request"
	q := r.URL.Query()

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return opts, err
	}
	opts.Formats = []string{format}

	for name, dst := range map[string]*float64{"width": &opts.Width, "height": &opts.Height} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "invalid %s %q", name, v)
		}
		*dst = f
	}
	if q.Get("refresh") == "true" {
		opts.Refresh = true
	}
	return opts, nil
}

func inputFormat(r *http.Request) mtio.Format {
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return mtio.FormatYAML
	}
	return mtio.FormatJSON
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps error codes to HTTP statuses. Malformed requests are 400;
// well-formed input that cannot be drawn is 422.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.ErrCodeInvalidJSON, apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case apperr.ErrCodeInvalidShape, apperr.ErrCodeInvalidCanvas, apperr.ErrCodeInvalidSurface:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := apperr.GetCode(err)
	status := statusFor(code)

	msg := err.Error()
	switch {
	case code == apperr.ErrCodeInvalidJSON:
		msg = mtio.InvalidJSONMessage
	case status == http.StatusInternalServerError:
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Mind Map Input</title>
<style>
.input-container { margin: 20px; }
textarea { width: 100%; height: 200px; margin-bottom: 10px; font-family: monospace; }
button { padding: 10px 20px; font-size: 16px; cursor: pointer; }
iframe { width: 100%; height: 100vh; border: 0; }
</style>
</head>
<body>
<div class="input-container">
  <h1>Mind Map Input</h1>
  <form id="input">
    <textarea name="tree" placeholder="Enter JSON data here..."></textarea>
    <button type="submit">Render Mind Map</button>
  </form>
</div>
<iframe id="map" title="Mind map" hidden></iframe>
<script>
const invalidJSON = {{.InvalidJSON}};
document.getElementById("input").addEventListener("submit", async (e) => {
  e.preventDefault();
  const body = e.target.elements.tree.value;
  try {
    JSON.parse(body);
  } catch {
    alert(invalidJSON);
    return;
  }
  const res = await fetch("/api/render?format=html", {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body,
  });
  if (!res.ok) {
    const err = await res.json().catch(() => ({ error: invalidJSON }));
    alert(err.error);
    return;
  }
  const frame = document.getElementById("map");
  frame.srcdoc = await res.text();
  frame.hidden = false;
});
</script>
</body>
</html>
`))
