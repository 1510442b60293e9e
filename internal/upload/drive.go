package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"btb-portal/internal/util"
)

const receiptsFolderName = "Resit Tempahan Baju"

// Drive stores files under a fixed parent folder, sharing them
// anyone-with-link so the stored URLs work from the UI.
type Drive struct {
	srv      *drivev3.Service
	folderID string
}

func OpenDrive(serviceAccountJSONPath, folderID string) (*Drive, error) {
	if _, err := os.Stat(serviceAccountJSONPath); err != nil {
		return nil, fmt.Errorf("service account json: %w", err)
	}
	ctx := context.Background()
	srv, err := drivev3.NewService(ctx,
		option.WithCredentialsFile(serviceAccountJSONPath),
		option.WithScopes(drivev3.DriveScope),
	)
	if err != nil {
		return nil, err
	}
	return &Drive{srv: srv, folderID: folderID}, nil
}

// SaveFile uploads data into a subfolder of the configured parent
// (created when missing) and returns the shareable view link.
func (d *Drive) SaveFile(subfolder, name, mimeType string, data []byte) (string, error) {
	parent := d.folderID
	if subfolder != "" {
		id, err := d.ensureSubfolder(subfolder)
		if err == nil {
			parent = id
		}
		// on lookup failure fall back to the main folder
	}
	meta := &drivev3.File{Name: name, Parents: []string{parent}}
	f, err := d.srv.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields("id", "webViewLink").
		Do()
	if err != nil {
		return "", err
	}
	_, err = d.srv.Permissions.Create(f.Id, &drivev3.Permission{
		Role: "reader",
		Type: "anyone",
	}).Do()
	if err != nil {
		return "", err
	}
	if f.WebViewLink != "" {
		return f.WebViewLink, nil
	}
	return "https://drive.google.com/file/d/" + f.Id + "/view", nil
}

func (d *Drive) ensureSubfolder(name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and '%s' in parents and mimeType = 'application/vnd.google-apps.folder' and trashed = false",
		strings.ReplaceAll(name, "'", `\'`), d.folderID)
	list, err := d.srv.Files.List().Q(q).Fields("files(id)").PageSize(1).Do()
	if err != nil {
		return "", err
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}
	folder, err := d.srv.Files.Create(&drivev3.File{
		Name:     name,
		Parents:  []string{d.folderID},
		MimeType: "application/vnd.google-apps.folder",
	}).Fields("id").Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}

// FileData is the uploadReceipt file payload: original filename, MIME
// type and base64 content.
type FileData struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// FileSaver is the slice of Drive the receipt store needs; tests stub it.
type FileSaver interface {
	SaveFile(subfolder, name, mimeType string, data []byte) (string, error)
}

// ReceiptStore names and stores payment receipt images.
type ReceiptStore struct {
	files FileSaver // nil when Drive is not configured
	now   func() time.Time
}

func NewReceiptStore(files FileSaver) *ReceiptStore {
	return &ReceiptStore{files: files, now: time.Now}
}

// Upload stores a receipt as
// Resit_<player>_<number>_<timestamp>.<ext> and returns its URL.
func (r *ReceiptStore) Upload(file FileData, playerName, jerseyNumber string) (string, error) {
	if file.Data == "" {
		return "", errors.New("Tiada fail dipilih.")
	}
	if r.files == nil {
		return "", errors.New("Configuration error: folderId missing.")
	}
	data, err := base64.StdEncoding.DecodeString(file.Data)
	if err != nil {
		return "", fmt.Errorf("Ralat upload: %v", err)
	}
	ext := "jpg"
	if i := strings.LastIndex(file.Name, "."); i >= 0 && i < len(file.Name)-1 {
		ext = file.Name[i+1:]
	}
	name := fmt.Sprintf("Resit_%s_%s_%s.%s",
		util.SanitizeFilePart(playerName), jerseyNumber, util.FileTimestamp(r.now()), ext)
	url, err := r.files.SaveFile(receiptsFolderName, name, file.Type, data)
	if err != nil {
		return "", fmt.Errorf("Ralat upload: %v", err)
	}
	return url, nil
}
