// Package bridge is the client side of the cross-origin workaround: it
// calls the action dispatcher the way the browser frontends do, through
// the JSONP read transport and the form-relay write transport, and
// correlates responses to in-flight calls via one-time callback names.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"btb-portal/internal/dispatch"
	"btb-portal/internal/jersey"
	"btb-portal/internal/models"
	"btb-portal/internal/upload"
)

// ErrLoadFailed is the generic read-transport failure: the script
// reference could not be loaded. No detail and no retry, matching the
// browser's onerror behavior.
var ErrLoadFailed = errors.New("Failed to load API")

const defaultWriteTimeout = 30 * time.Second

var invocation = regexp.MustCompile(`(?s)^\s*([A-Za-z_]\w*)\s*\((.*)\)\s*;?\s*$`)

type Client struct {
	baseURL      string
	httpClient   *http.Client
	writeTimeout time.Duration

	mu      sync.Mutex
	pending map[string]chan dispatch.Envelope
}

type Option func(*Client)

// WithWriteTimeout bounds how long a write call waits for its
// completion callback. The historical value is 30s; real deployments
// should tune it against observed latency.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Client) { c.writeTimeout = d }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{},
		writeTimeout: defaultWriteTimeout,
		pending:      map[string]chan dispatch.Envelope{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// newCallbackID allocates a one-time correlation id: timestamp plus a
// random suffix, unique across concurrent calls on one client.
func (c *Client) newCallbackID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("callback_%d_%s", time.Now().UnixMilli(), suffix)
}

func (c *Client) register(id string) chan dispatch.Envelope {
	ch := make(chan dispatch.Envelope, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	return ch
}

func (c *Client) unregister(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

// settle delivers an envelope to the pending call registered under the
// given callback name. Unknown or already-settled names are dropped.
func (c *Client) settle(id string, env dispatch.Envelope) bool {
	c.mu.Lock()
	ch, ok := c.pending[id]
	c.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case ch <- env:
		return true
	default:
		return false
	}
}

// parseInvocation unwraps `name({...});` script text into the callback
// name and its envelope argument.
func parseInvocation(body string) (string, dispatch.Envelope, bool) {
	m := invocation.FindStringSubmatch(body)
	if m == nil {
		return "", dispatch.Envelope{}, false
	}
	var env dispatch.Envelope
	if err := json.Unmarshal([]byte(m[2]), &env); err != nil {
		return "", dispatch.Envelope{}, false
	}
	return m[1], env, true
}

// Read performs an idempotent action over the JSONP transport: the
// request URL carries the action, its parameters and a one-time
// callback name; the response is script text invoking that callback
// with the envelope.
func (c *Client) Read(action string, params map[string]string) (dispatch.Envelope, error) {
	id := c.newCallbackID()
	ch := c.register(id)
	defer c.unregister(id)

	q := url.Values{}
	q.Set("action", action)
	q.Set("callback", id)
	for k, v := range params {
		q.Set(k, v)
	}
	resp, err := c.httpClient.Get(c.baseURL + "/api?" + q.Encode())
	if err != nil {
		return dispatch.Envelope{}, ErrLoadFailed
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return dispatch.Envelope{}, ErrLoadFailed
	}
	if name, env, ok := parseInvocation(string(body)); ok {
		c.settle(name, env)
	}

	select {
	case env := <-ch:
		return env, nil
	default:
		return dispatch.Envelope{}, ErrLoadFailed
	}
}

// Write performs a mutating action over the form relay: the action and
// callback name travel in the URL, the JSON payload in a single "data"
// form field. The submit itself is fire-and-forget; the only completion
// signal is the response script invoking the callback, so the per-call
// timeout fires whenever that never happens. A timed-out write may
// still have executed server-side; the transport cannot tell.
func (c *Client) Write(action string, payload any) (dispatch.Envelope, error) {
	id := c.newCallbackID()
	ch := c.register(id)
	defer c.unregister(id)

	data, err := json.Marshal(payload)
	if err != nil {
		return dispatch.Envelope{}, err
	}
	form := url.Values{}
	form.Set("data", string(data))

	q := url.Values{}
	q.Set("action", action)
	q.Set("callback", id)

	go func() {
		resp, err := c.httpClient.Post(
			c.baseURL+"/api?"+q.Encode(),
			"application/x-www-form-urlencoded",
			strings.NewReader(form.Encode()),
		)
		if err != nil {
			return
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return
		}
		if name, env, ok := parseInvocation(string(body)); ok {
			c.settle(name, env)
		}
	}()

	select {
	case env := <-ch:
		return env, nil
	case <-time.After(c.writeTimeout):
		return dispatch.Envelope{}, fmt.Errorf("no response callback within %s", c.writeTimeout)
	}
}

// decodeData remarshals the envelope's untyped data into out.
func decodeData(data any, out any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// GetData fetches all players.
func (c *Client) GetData() ([]models.Player, error) {
	env, err := c.Read("getData", nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, errors.New(env.Error)
	}
	var out []models.Player
	if err := decodeData(env.Data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTakenJerseyNumbers fetches the taken-numbers set.
func (c *Client) GetTakenJerseyNumbers() ([]int, error) {
	env, err := c.Read("getTakenJerseyNumbers", nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, errors.New(env.Error)
	}
	var out []int
	if err := decodeData(env.Data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchByEmail fetches players matching an email.
func (c *Client) SearchByEmail(email string) ([]models.Player, error) {
	env, err := c.Read("searchByEmail", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, errors.New(env.Error)
	}
	var out []models.Player
	if err := decodeData(env.Data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPlayerByID fetches one player, or nil when absent.
func (c *Client) GetPlayerByID(rowIndex int) (*models.Player, error) {
	env, err := c.Read("getPlayerById", map[string]string{"rowIndex": fmt.Sprint(rowIndex)})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, errors.New(env.Error)
	}
	if env.Data == nil {
		return nil, nil
	}
	var out models.Player
	if err := decodeData(env.Data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddPlayer submits a new registration.
func (c *Client) AddPlayer(in models.PlayerInput) (dispatch.Envelope, error) {
	return c.Write("addPlayer", map[string]any{"playerData": in})
}

// UpdatePlayer overwrites a registration in place.
func (c *Client) UpdatePlayer(rowIndex int, in models.PlayerInput) (dispatch.Envelope, error) {
	return c.Write("updatePlayer", map[string]any{"rowIndex": rowIndex, "playerData": in})
}

// DeletePlayer removes a registration, confirming with its email.
func (c *Client) DeletePlayer(rowIndex int, email string) (dispatch.Envelope, error) {
	return c.Write("deletePlayer", map[string]any{"rowIndex": rowIndex, "email": email})
}

// SubmitJerseyBooking submits a booking form.
func (c *Client) SubmitJerseyBooking(in jersey.BookingInput) (dispatch.Envelope, error) {
	return c.Write("submitJerseyBooking", in)
}

// UploadReceipt sends a payment receipt file.
func (c *Client) UploadReceipt(file upload.FileData, playerName string, jerseyNumber int) (dispatch.Envelope, error) {
	return c.Write("uploadReceipt", map[string]any{
		"fileData":     file,
		"playerName":   playerName,
		"jerseyNumber": jerseyNumber,
	})
}
