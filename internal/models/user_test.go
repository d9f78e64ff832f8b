package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		want  string
	}{
		{"both", "Ada", "Lovelace", "Ada Lovelace"},
		{"first only", "Ada", "", "Ada"},
		{"last only", "", "Lovelace", "Lovelace"},
		{"neither", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{FirstName: tt.first, LastName: tt.last}
			if got := u.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUser_MarshalJSON(t *testing.T) {
	role := int64(3)
	u := &User{ID: 7, Username: "ada", PasswordHash: "$2a$hash", FirstName: "Ada", LastName: "Lovelace", RoleID: &role, RoleName: RoleViewer}
	data, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["full_name"] != "Ada Lovelace" || got["username"] != "ada" || got["role_name"] != RoleViewer {
		t.Errorf("unexpected JSON: %s", data)
	}
	if got["id"] != float64(7) {
		t.Errorf("id = %v, want 7", got["id"])
	}
	if strings.Contains(string(data), "hash") {
		t.Errorf("password hash leaked: %s", data)
	}

	list, err := json.Marshal([]*User{u})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(list), `"full_name":"Ada Lovelace"`) {
		t.Errorf("list JSON missing full_name: %s", list)
	}
}
