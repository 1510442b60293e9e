package models

import "regexp"

// Registration sheet column positions. The order is fixed by the Google
// Form that feeds the sheet; legacy rows may lack the trailing IC
// number column.
const (
	colTimestamp = iota
	colEmail
	colName
	colAge
	colParentName
	colParentPhone
	colAddress
	colSchool
	colSkillLevel
	colAchievement
	colParentConsent
	colImageURL
	colICNumber

	playerColumns = colICNumber + 1
)

var (
	driveIDParam = regexp.MustCompile(`[?&]id=([^&]+)`)
	driveIDPath  = regexp.MustCompile(`/d/([-\w]{10,})`)
)

// DecodePlayer maps a raw sheet row to a Player. Missing trailing cells
// decode as empty strings, never as an error.
func DecodePlayer(row []string, rowIndex int) Player {
	return Player{
		RowIndex:      rowIndex,
		Timestamp:     cell(row, colTimestamp),
		Email:         cell(row, colEmail),
		Name:          cell(row, colName),
		Age:           cell(row, colAge),
		ParentName:    cell(row, colParentName),
		ParentPhone:   cell(row, colParentPhone),
		Address:       cell(row, colAddress),
		School:        cell(row, colSchool),
		SkillLevel:    cell(row, colSkillLevel),
		Achievement:   cell(row, colAchievement),
		ParentConsent: cell(row, colParentConsent),
		ImageURL:      TransformImageURL(cell(row, colImageURL)),
		ICNumber:      cell(row, colICNumber),
	}
}

// EncodePlayerRow builds the replacement row for an update: timestamp
// and image URL are always carried over from the existing row, the
// email falls back to the existing one when the patch omits it, and
// everything else comes from the patch.
func EncodePlayerRow(existing []string, patch PlayerInput) []string {
	email := patch.Email
	if email == "" {
		email = cell(existing, colEmail)
	}
	return []string{
		cell(existing, colTimestamp),
		email,
		patch.Name,
		patch.Age,
		patch.ParentName,
		patch.ParentPhone,
		patch.Address,
		patch.School,
		patch.SkillLevel,
		patch.Achievement,
		patch.ParentConsent,
		cell(existing, colImageURL),
		patch.ICNumber,
	}
}

// NewPlayerRow builds the row appended by add: a fresh timestamp, an
// empty image URL and everything else from the input.
func NewPlayerRow(timestamp string, in PlayerInput) []string {
	return []string{
		timestamp,
		in.Email,
		in.Name,
		in.Age,
		in.ParentName,
		in.ParentPhone,
		in.Address,
		in.School,
		in.SkillLevel,
		in.Achievement,
		in.ParentConsent,
		"",
		in.ICNumber,
	}
}

// TransformImageURL rewrites a Google Drive share link into the direct
// view form usable in an <img> tag. Recognized shapes are the ?id=/&id=
// query parameter and the /d/<id>/ path segment (id being 10+ word or
// hyphen characters). Anything else passes through unchanged; empty
// input stays empty.
func TransformImageURL(raw string) string {
	if raw == "" {
		return ""
	}
	var fileID string
	if m := driveIDParam.FindStringSubmatch(raw); m != nil {
		fileID = m[1]
	} else if m := driveIDPath.FindStringSubmatch(raw); m != nil {
		fileID = m[1]
	}
	if fileID == "" {
		return raw
	}
	return "https://drive.google.com/uc?export=view&id=" + fileID
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
