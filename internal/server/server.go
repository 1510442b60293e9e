// Package server exposes the action dispatcher over HTTP together with
// the config and image-upload endpoints. GET /api serves the read
// actions (JSONP-capable), POST /api the write actions (JSON body or
// the hidden-form relay's urlencoded "data" field).
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"btb-portal/internal/config"
	"btb-portal/internal/dispatch"
	"btb-portal/internal/logging"
	"btb-portal/internal/upload"
)

type Server struct {
	cfg        config.Config
	dispatcher *dispatch.Dispatcher
	imgbb      *upload.ImgbbClient
	router     chi.Router
}

func New(cfg config.Config, d *dispatch.Dispatcher, imgbb *upload.ImgbbClient) *Server {
	s := &Server{cfg: cfg, dispatcher: d, imgbb: imgbb}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api", s.handleRead)
	r.Post("/api", s.handleWrite)
	r.HandleFunc("/api/config", s.handleConfig)
	r.HandleFunc("/api/upload-image", s.handleUploadImage)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// HTTPServer wraps the router in an http.Server bound to the
// configured address.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.router}
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := dispatch.Request{
		Action: q.Get("action"),
		Params: flattenQuery(q),
	}
	env := s.dispatcher.DispatchRead(req)
	logging.FromContext(r.Context()).Debug("read action", "action", req.Action, "success", env.Success)
	dispatch.WriteEnvelope(w, q.Get("callback"), env)
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	action := q.Get("action")
	callback := q.Get("callback")

	body, _ := io.ReadAll(r.Body)
	payload := extractPayload(body)

	// The form relay may carry action and callback as form fields
	// instead of query parameters.
	if action == "" || callback == "" {
		if vals, err := url.ParseQuery(string(body)); err == nil {
			if action == "" {
				action = vals.Get("action")
			}
			if callback == "" {
				callback = vals.Get("callback")
			}
		}
	}

	env := s.dispatcher.DispatchWrite(dispatch.Request{
		Action:  action,
		Params:  flattenQuery(q),
		Payload: payload,
	})
	logging.FromContext(r.Context()).Debug("write action", "action", action, "success", env.Success)
	dispatch.WriteEnvelope(w, callback, env)
}

// extractPayload pulls the JSON document out of a write request. The
// body is either raw JSON or an urlencoded form whose "data" field
// holds the JSON, per the hidden-form transport.
func extractPayload(body []byte) json.RawMessage {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return json.RawMessage(trimmed)
	}
	if strings.Contains(trimmed, "data=") {
		if vals, err := url.ParseQuery(trimmed); err == nil {
			if data := vals.Get("data"); data != "" {
				return json.RawMessage(data)
			}
		}
	}
	return nil
}

// flattenQuery keeps the first value of each parameter and, when a
// "data" parameter carries a JSON object, merges its scalar fields in.
// Read clients differ in which of the two styles they use.
func flattenQuery(q url.Values) map[string]string {
	out := make(map[string]string, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	if data := q.Get("data"); data != "" {
		var fields map[string]any
		if err := json.Unmarshal([]byte(data), &fields); err == nil {
			for k, v := range fields {
				if _, exists := out[k]; exists {
					continue
				}
				switch val := v.(type) {
				case string:
					out[k] = val
				case float64:
					out[k] = formatNumber(val)
				case bool:
					if val {
						out[k] = "true"
					} else {
						out[k] = "false"
					}
				}
			}
		}
	}
	return out
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", f)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"success": false,
			"error":   "Method not allowed. Use GET.",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"appsScriptUrl": s.cfg.AppsScriptURL,
		"imgbbApiKey":   "hidden",
	})
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"success": false,
			"error":   "Method not allowed. Use POST.",
		})
		return
	}
	if !s.imgbb.Configured() {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Server configuration error: IMGBB_API_KEY not set",
		})
		return
	}
	var in struct {
		ImageData string `json:"imageData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.ImageData == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Missing imageData in request body",
		})
		return
	}
	res, err := s.imgbb.Upload(in.ImageData)
	if err != nil {
		logging.FromContext(r.Context()).Error("imgbb upload", "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"fileUrl":      res.FileURL,
		"thumbnailUrl": res.ThumbnailURL,
		"deleteUrl":    res.DeleteURL,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
