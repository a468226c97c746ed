package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSearchParams_IDFilters(t *testing.T) {
	cases := []struct {
		body    string
		wantID  int64
		wantErr string
	}{
		{`{"case_id": 7}`, 7, ""},
		{`{"case_id": "7"}`, 7, ""},
		{`{"case_id": " 7 "}`, 7, ""},
		{`{"case_id": "abc"}`, 0, "case_id must be a number"},
		{`{"case_id": ""}`, 0, "case_id must be a number"},
		{`{"case_id": 1.5}`, 0, "case_id must be a number"},
		{`{"investigation_id": "x1"}`, 0, "investigation_id must be a number"},
	}
	for _, c := range cases {
		var p SearchParams
		if err := json.Unmarshal([]byte(c.body), &p); err != nil {
			t.Fatalf("%s: decode: %v", c.body, err)
		}
		err := p.Validate()
		if c.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Errorf("%s: Validate() = %v, want %q", c.body, err, c.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: Validate() = %v", c.body, err)
		}
		if !p.CaseID.Set || p.CaseID.Value.Int64() != c.wantID {
			t.Errorf("%s: case_id = %+v, want %d", c.body, p.CaseID, c.wantID)
		}
	}
}

func TestSearchParams_NullIDIsNoFilter(t *testing.T) {
	var p SearchParams
	if err := json.Unmarshal([]byte(`{"case_id": null}`), &p); err != nil {
		t.Fatal(err)
	}
	if err := p.Validate(); err != nil || !p.CaseID.Null {
		t.Errorf("null case_id: %+v, %v", p.CaseID, err)
	}
}

func TestSearchID_MarshalsAsNumber(t *testing.T) {
	data, err := json.Marshal(SearchParams{CaseID: NewField(NewSearchID(12))})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"case_id":12}` {
		t.Errorf("encoded = %s", data)
	}
}
