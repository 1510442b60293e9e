package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformImageURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "path segment form",
			in:   "https://drive.google.com/file/d/ABCDEFGHIJ1234/view",
			want: "https://drive.google.com/uc?export=view&id=ABCDEFGHIJ1234",
		},
		{
			name: "query parameter form",
			in:   "https://drive.google.com/open?id=ABCDEFGHIJ1234",
			want: "https://drive.google.com/uc?export=view&id=ABCDEFGHIJ1234",
		},
		{
			name: "ampersand query parameter",
			in:   "https://drive.google.com/open?usp=sharing&id=ABCDEFGHIJ1234",
			want: "https://drive.google.com/uc?export=view&id=ABCDEFGHIJ1234",
		},
		{
			name: "empty stays empty",
			in:   "",
			want: "",
		},
		{
			name: "no id passes through",
			in:   "https://example.com/no-id-here",
			want: "https://example.com/no-id-here",
		},
		{
			name: "short path id passes through",
			in:   "https://drive.google.com/d/short/view",
			want: "https://drive.google.com/d/short/view",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TransformImageURL(tt.in))
		})
	}
}

func TestDecodePlayer(t *testing.T) {
	row := []string{
		"2025-01-01T10:00:00Z", "a@b.com", "Ali", "12", "Abu", "0123456789",
		"Putrajaya", "SK Presint 9", "Beginner", "MVP 2024", "Ya",
		"https://drive.google.com/open?id=FILE12345678", "010203040506",
	}
	p := DecodePlayer(row, 2)
	assert.Equal(t, 2, p.RowIndex)
	assert.Equal(t, "a@b.com", p.Email)
	assert.Equal(t, "Ali", p.Name)
	assert.Equal(t, "https://drive.google.com/uc?export=view&id=FILE12345678", p.ImageURL)
	assert.Equal(t, "010203040506", p.ICNumber)
}

func TestDecodePlayerLegacyRow(t *testing.T) {
	// Legacy rows end before the IC number column.
	row := []string{"ts", "a@b.com", "Ali"}
	p := DecodePlayer(row, 5)
	assert.Equal(t, "Ali", p.Name)
	assert.Equal(t, "", p.School)
	assert.Equal(t, "", p.ICNumber)
	assert.Equal(t, "", p.ImageURL)
}

func TestEncodePlayerRow(t *testing.T) {
	existing := []string{
		"orig-ts", "old@b.com", "Old", "10", "", "", "", "", "", "", "",
		"http://img", "000",
	}

	t.Run("preserves timestamp and image, patches the rest", func(t *testing.T) {
		row := EncodePlayerRow(existing, PlayerInput{Email: "new@b.com", Name: "New"})
		assert.Equal(t, "orig-ts", row[0])
		assert.Equal(t, "new@b.com", row[1])
		assert.Equal(t, "New", row[2])
		assert.Equal(t, "", row[3])
		assert.Equal(t, "http://img", row[11])
	})

	t.Run("keeps stored email when patch omits it", func(t *testing.T) {
		row := EncodePlayerRow(existing, PlayerInput{Name: "New"})
		assert.Equal(t, "old@b.com", row[1])
	})
}

func TestFlexString(t *testing.T) {
	var v struct {
		N FlexString `json:"n"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"n": 42}`), &v))
	assert.Equal(t, "42", v.N.String())

	require.NoError(t, json.Unmarshal([]byte(`{"n": "7"}`), &v))
	assert.Equal(t, "7", v.N.String())

	require.NoError(t, json.Unmarshal([]byte(`{"n": null}`), &v))
	assert.Equal(t, "", v.N.String())
}
