package handler

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/model"
	"github.com/cuongbtq/jobboard-be/internal/api/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobCursor(t *testing.T) {
	cursor := &model.JobCursor{
		CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 123456000, time.UTC),
		ID:        42,
	}

	decoded, err := DecodeJobCursor(EncodeJobCursor(cursor))
	require.NoError(t, err)
	assert.True(t, cursor.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, int64(42), decoded.ID)

	empty, err := DecodeJobCursor("")
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestDecodeJobCursor_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{name: "not base64", cursor: "%%%"},
		{name: "missing separator", cursor: base64.URLEncoding.EncodeToString([]byte("12345"))},
		{name: "bad timestamp", cursor: base64.URLEncoding.EncodeToString([]byte("x|1"))},
		{name: "bad id", cursor: base64.URLEncoding.EncodeToString([]byte("1|y"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJobCursor(tt.cursor)
			assert.Error(t, err)
		})
	}
}

func TestTransitionResponse(t *testing.T) {
	failed := errors.New("failed")

	tests := []struct {
		name        string
		out         workflow.Outcome
		wantMessage string
		wantWarning string
	}{
		{
			name:        "complete",
			out:         workflow.Outcome{EmailSent: true},
			wantMessage: "done",
		},
		{
			name:        "email failed",
			out:         workflow.Outcome{EmailErr: failed},
			wantMessage: "partial",
			wantWarning: warnEmail,
		},
		{
			name:        "notification failed",
			out:         workflow.Outcome{EmailSent: true, NotificationErr: failed},
			wantMessage: "partial",
			wantWarning: warnNotification,
		},
		{
			name:        "both failed",
			out:         workflow.Outcome{EmailErr: failed, NotificationErr: failed},
			wantMessage: "partial",
			wantWarning: warnNotification + "; " + warnEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := transitionResponse(&tt.out, "done", "partial")
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantWarning, resp.Warning)
			assert.Equal(t, tt.out.EmailSent, resp.EmailSent)
			assert.Equal(t, tt.out.NotificationErr == nil, resp.NotificationRecorded)
		})
	}
}

func TestCloseResponse(t *testing.T) {
	tests := []struct {
		name        string
		out         workflow.CloseOutcome
		wantMessage string
		wantWarning string
	}{
		{
			name:        "every applicant notified",
			out:         workflow.CloseOutcome{Notified: []int64{1, 2}, Failed: []int64{}},
			wantMessage: "Job closed and notifications sent",
		},
		{
			name:        "no applicants",
			out:         workflow.CloseOutcome{Notified: []int64{}, Failed: []int64{}},
			wantMessage: "Job closed and notifications sent",
		},
		{
			name:        "some notifications failed",
			out:         workflow.CloseOutcome{Notified: []int64{1}, Failed: []int64{2}},
			wantMessage: "Job closed",
			wantWarning: "some applicants could not be notified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := closeResponse(&tt.out)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, tt.wantWarning, resp.Warning)
			assert.Equal(t, tt.out.Failed, resp.Failed)
		})
	}
}
