// Package dispatch routes named actions to their operations and
// normalizes every outcome into the uniform response envelope. The
// action table is closed and built at construction; an unknown action
// is the only runtime branch.
package dispatch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"btb-portal/internal/jersey"
	"btb-portal/internal/models"
	"btb-portal/internal/notify"
	"btb-portal/internal/players"
	"btb-portal/internal/upload"
)

// Envelope is the uniform response shape. Data carries read results,
// Message user-facing operation outcomes, Error dispatcher-level
// failures. RowIndex, TakenNumbers and FileURL are action-specific
// extras kept at the top level for compatibility with the original
// API clients.
type Envelope struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	RowIndex     int    `json:"rowIndex,omitempty"`
	TakenNumbers []int  `json:"takenNumbers,omitempty"`
	FileURL      string `json:"fileUrl,omitempty"`
}

// Request is one inbound call: the action name, the URL parameters and
// the decoded JSON body for write actions.
type Request struct {
	Action  string
	Params  map[string]string
	Payload json.RawMessage
}

type HandlerFunc func(Request) Envelope

// ReceiptUploader stores a payment receipt and returns its URL.
type ReceiptUploader interface {
	Upload(file upload.FileData, playerName, jerseyNumber string) (string, error)
}

type Dispatcher struct {
	reads  map[string]HandlerFunc
	writes map[string]HandlerFunc
	log    *slog.Logger
}

// New builds the dispatcher with its full action table resolved up
// front. Read actions are served on GET, write actions on POST,
// mirroring the two bridge transports.
func New(p *players.Service, j *jersey.Service, receipts ReceiptUploader, n *notify.Notifier, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{log: log}

	d.reads = map[string]HandlerFunc{
		"getData": func(Request) Envelope {
			return Envelope{Success: true, Data: p.List()}
		},
		"getTakenJerseyNumbers": func(Request) Envelope {
			return Envelope{Success: true, Data: j.TakenNumbers()}
		},
		"searchByEmail": func(req Request) Envelope {
			return Envelope{Success: true, Data: p.SearchByEmail(req.Params["email"])}
		},
		"getPlayerById": func(req Request) Envelope {
			rowIndex, err := strconv.Atoi(req.Params["rowIndex"])
			if err != nil {
				// matches the original: a non-numeric id reads as absent
				return Envelope{Success: true, Data: (*models.Player)(nil)}
			}
			return Envelope{Success: true, Data: p.GetByID(rowIndex)}
		},
	}

	d.writes = map[string]HandlerFunc{
		"uploadReceipt":       d.uploadReceipt(receipts),
		"submitJerseyBooking": d.submitJerseyBooking(j, n),
		"updatePlayer":        d.updatePlayer(p),
		"deletePlayer":        d.deletePlayer(p),
		"addPlayer":           d.addPlayer(p, n),
	}
	return d
}

// DispatchRead resolves an idempotent action. Unknown names and handler
// panics both settle into the envelope; nothing propagates.
func (d *Dispatcher) DispatchRead(req Request) Envelope {
	return d.dispatch(d.reads, req)
}

// DispatchWrite resolves a mutating action.
func (d *Dispatcher) DispatchWrite(req Request) Envelope {
	return d.dispatch(d.writes, req)
}

func (d *Dispatcher) dispatch(table map[string]HandlerFunc, req Request) (env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("action panic", "action", req.Action, "panic", r)
			env = Envelope{Success: false, Error: fmt.Sprint(r)}
		}
	}()
	h, ok := table[req.Action]
	if !ok {
		return Envelope{Success: false, Error: "Unknown action: " + req.Action}
	}
	return h(req)
}

func (d *Dispatcher) uploadReceipt(receipts ReceiptUploader) HandlerFunc {
	return func(req Request) Envelope {
		var in struct {
			FileData     upload.FileData   `json:"fileData"`
			PlayerName   string            `json:"playerName"`
			JerseyNumber models.FlexString `json:"jerseyNumber"`
		}
		_ = json.Unmarshal(req.Payload, &in)
		if receipts == nil {
			return Envelope{Success: false, Message: "Configuration error: folderId missing."}
		}
		url, err := receipts.Upload(in.FileData, in.PlayerName, in.JerseyNumber.String())
		if err != nil {
			return Envelope{Success: false, Message: err.Error()}
		}
		return Envelope{Success: true, FileURL: url}
	}
}

func (d *Dispatcher) submitJerseyBooking(j *jersey.Service, n *notify.Notifier) HandlerFunc {
	return func(req Request) Envelope {
		var in jersey.BookingInput
		_ = json.Unmarshal(req.Payload, &in)
		res, err := j.Submit(in)
		if err != nil {
			if verr, ok := err.(*jersey.ValidationError); ok {
				return Envelope{Success: false, Message: verr.Message, TakenNumbers: verr.TakenNumbers}
			}
			return Envelope{Success: false, Message: "Ralat: " + err.Error()}
		}
		last := res.TakenNumbers[len(res.TakenNumbers)-1]
		go n.BookingReceived(in.PlayerName, last)
		return Envelope{Success: true, Message: res.Message, TakenNumbers: res.TakenNumbers}
	}
}

func (d *Dispatcher) updatePlayer(p *players.Service) HandlerFunc {
	return func(req Request) Envelope {
		var in struct {
			RowIndex   models.FlexString   `json:"rowIndex"`
			PlayerData *models.PlayerInput `json:"playerData"`
		}
		_ = json.Unmarshal(req.Payload, &in)
		rowIndex, err := strconv.Atoi(in.RowIndex.String())
		if err != nil {
			return Envelope{Success: false, Error: "rowIndex is required"}
		}
		patch := models.PlayerInput{}
		if in.PlayerData != nil {
			patch = *in.PlayerData
		} else {
			_ = json.Unmarshal(req.Payload, &patch)
		}
		if err := p.Update(rowIndex, patch); err != nil {
			return Envelope{Success: false, Message: err.Error()}
		}
		return Envelope{Success: true, Message: "Maklumat pemain berjaya dikemaskini"}
	}
}

func (d *Dispatcher) deletePlayer(p *players.Service) HandlerFunc {
	return func(req Request) Envelope {
		var in struct {
			RowIndex     models.FlexString `json:"rowIndex"`
			Email        string            `json:"email"`
			ConfirmEmail string            `json:"confirmEmail"`
		}
		_ = json.Unmarshal(req.Payload, &in)
		email := in.Email
		if email == "" {
			email = in.ConfirmEmail
		}
		rowIndex, err := strconv.Atoi(in.RowIndex.String())
		if err != nil || email == "" {
			return Envelope{Success: false, Error: "rowIndex and email are required"}
		}
		if err := p.Delete(rowIndex, email); err != nil {
			return Envelope{Success: false, Message: err.Error()}
		}
		return Envelope{Success: true, Message: "Pemain berjaya dipadam"}
	}
}

func (d *Dispatcher) addPlayer(p *players.Service, n *notify.Notifier) HandlerFunc {
	return func(req Request) Envelope {
		var in struct {
			PlayerData *models.PlayerInput `json:"playerData"`
		}
		_ = json.Unmarshal(req.Payload, &in)
		patch := models.PlayerInput{}
		if in.PlayerData != nil {
			patch = *in.PlayerData
		} else {
			_ = json.Unmarshal(req.Payload, &patch)
		}
		rowIndex, err := p.Add(patch)
		if err != nil {
			return Envelope{Success: false, Message: err.Error()}
		}
		go n.PlayerAdded(patch.Name, patch.Email, rowIndex)
		return Envelope{Success: true, RowIndex: rowIndex, Message: "Pemain baru berjaya ditambah"}
	}
}

var callbackName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// WriteEnvelope emits the envelope as plain JSON, or wrapped as
// <callback>(<json>); with a script content type when a callback
// parameter was supplied. The dual framing serves the JSONP read
// transport and the hidden-form write transport of the bridge.
func WriteEnvelope(w http.ResponseWriter, callback string, env Envelope) {
	body, err := json.Marshal(env)
	if err != nil {
		body = []byte(`{"success":false,"error":"encoding error"}`)
	}
	if callback != "" && callbackName.MatchString(callback) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		fmt.Fprintf(w, "%s(%s);", callback, body)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(body)
}
