package cli

import (
	"testing"

	"github.com/testpulse/testpulse/model"
	"github.com/testpulse/testpulse/report"
)

func reportEntries(ids ...string) []report.Entry {
	entries := make([]report.Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, report.Entry{
			Report: model.Report{
				Session: model.Session{ID: id},
			},
		})
	}
	return entries
}

func TestResolveReportArg(t *testing.T) {
	entries := reportEntries(
		"20260826-153000-aabbccdd",
		"20260825-090000-11223344",
		"20260824-120000-99887766",
	)

	tests := []struct {
		name    string
		arg     string
		wantID  string
		wantErr bool
	}{
		{
			name:   "index 0 - last report",
			arg:    "0",
			wantID: "20260826-153000-aabbccdd",
		},
		{
			name:   "index -1 - second-to-last",
			arg:    "-1",
			wantID: "20260825-090000-11223344",
		},
		{
			name:   "index -2 - third-to-last",
			arg:    "-2",
			wantID: "20260824-120000-99887766",
		},
		{
			name:    "positive index is invalid",
			arg:     "1",
			wantErr: true,
		},
		{
			name:    "index out of range",
			arg:     "-3",
			wantErr: true,
		},
		{
			name:   "id prefix match",
			arg:    "20260825",
			wantID: "20260825-090000-11223344",
		},
		{
			name:   "id prefix match is case-insensitive",
			arg:    "20260826-153000-AABB",
			wantID: "20260826-153000-aabbccdd",
		},
		{
			name:    "unknown id",
			arg:     "deadbeef",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveReportArg(tt.arg, entries)
			if tt.wantErr {
				if err == nil {
					t.Errorf("resolveReportArg(%q) expected error, got %v", tt.arg, got.Report.Session.ID)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveReportArg(%q) unexpected error: %v", tt.arg, err)
			}
			if got.Report.Session.ID != tt.wantID {
				t.Errorf("resolveReportArg(%q) = %v, want %v", tt.arg, got.Report.Session.ID, tt.wantID)
			}
		})
	}
}

func TestResolveReportArg_NoReports(t *testing.T) {
	if _, err := resolveReportArg("0", nil); err == nil {
		t.Error("resolveReportArg() expected error for empty entries")
	}
}
