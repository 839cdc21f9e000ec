package httputil

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"cirrus/internal/domain"
)

func TestQueryFolderID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		query   string
		want    *uuid.UUID
		wantErr bool
	}{
		{name: "absent", query: ""},
		{name: "empty", query: "?folder_id="},
		{name: "null", query: "?folder_id=null"},
		{name: "nil uuid", query: "?folder_id=" + uuid.Nil.String()},
		{name: "id", query: "?folder_id=" + id.String(), want: &id},
		{name: "garbage", query: "?folder_id=nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/entries"+tt.query, nil)
			got, err := QueryFolderID(r, "folder_id")
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOptionalUUID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *uuid.UUID
		wantErr     bool
	}{
		{name: "absent", body: `{}`},
		{name: "null", body: `{"parent_id": null}`, wantPresent: true},
		{name: "id", body: `{"parent_id": "` + id.String() + `"}`, wantPresent: true, wantValue: &id},
		{name: "invalid", body: `{"parent_id": "x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				ParentID OptionalUUID `json:"parent_id"`
			}
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.ParentID.Present != tt.wantPresent {
				t.Errorf("Present = %v, want %v", req.ParentID.Present, tt.wantPresent)
			}
			if (req.ParentID.Value == nil) != (tt.wantValue == nil) ||
				(tt.wantValue != nil && *req.ParentID.Value != *tt.wantValue) {
				t.Errorf("Value = %v, want %v", req.ParentID.Value, tt.wantValue)
			}
		})
	}
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/folders", strings.NewReader(`{"name":"a","colour":"red"}`))
	w := httptest.NewRecorder()

	var dest struct {
		Name string `json:"name"`
	}
	if err := ParseJSON(w, r, &dest); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
